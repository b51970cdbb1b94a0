package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/model"
)

const (
	DefaultEventQueueSize    = 1024
	DefaultEventBatchSize    = 50
	DefaultEventBatchTimeout = 2 * time.Second
)

// EventWorker buffers session events in a bounded queue and flushes them to a
// Sink in batches. Publish never blocks; events are dropped when the queue is full.
type EventWorker struct {
	sink         Sink
	queue        chan model.SessionEvent
	batchSize    int
	batchTimeout time.Duration
	dropped      atomic.Int64
	log          zerolog.Logger
}

// NewEventWorker creates a new EventWorker. Non-positive sizes fall back to defaults.
func NewEventWorker(sink Sink, queueSize, batchSize int, batchTimeout time.Duration, log zerolog.Logger) *EventWorker {
	if queueSize <= 0 {
		queueSize = DefaultEventQueueSize
	}
	if batchSize <= 0 {
		batchSize = DefaultEventBatchSize
	}
	if batchTimeout <= 0 {
		batchTimeout = DefaultEventBatchTimeout
	}
	return &EventWorker{
		sink:         sink,
		queue:        make(chan model.SessionEvent, queueSize),
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
		log:          log.With().Str("component", "event_worker").Logger(),
	}
}

// Publish enqueues evt without blocking.
func (w *EventWorker) Publish(evt model.SessionEvent) {
	select {
	case w.queue <- evt:
	default:
		if n := w.dropped.Add(1); n == 1 || n%100 == 0 {
			w.log.Warn().Int64("dropped", n).Msg("Event queue full, dropping events")
		}
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (w *EventWorker) Dropped() int64 {
	return w.dropped.Load()
}

// Start runs the batching loop until ctx is cancelled, then drains the queue.
// Call in a goroutine.
func (w *EventWorker) Start(ctx context.Context) {
	w.log.Info().Msg("EventWorker started")

	batch := make([]model.SessionEvent, 0, w.batchSize)
	ticker := time.NewTicker(w.batchTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining events...")
			batch = w.drain(batch)
			w.flushSafe(context.Background(), batch)
			w.log.Info().Msg("EventWorker stopped")
			return

		case evt := <-w.queue:
			batch = append(batch, evt)
			if len(batch) >= w.batchSize {
				w.flushSafe(ctx, batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flushSafe(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (w *EventWorker) drain(batch []model.SessionEvent) []model.SessionEvent {
	for {
		select {
		case evt := <-w.queue:
			batch = append(batch, evt)
		default:
			return batch
		}
	}
}

func (w *EventWorker) flushSafe(ctx context.Context, batch []model.SessionEvent) {
	if len(batch) == 0 {
		return
	}
	start := time.Now()
	if err := w.sink.Write(ctx, batch); err != nil {
		w.log.Error().Err(err).Int("batch", len(batch)).Msg("Event flush failed")
		return
	}
	w.log.Debug().
		Int("batch", len(batch)).
		Dur("took", time.Since(start)).
		Msg("Events flushed")
}
