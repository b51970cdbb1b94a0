package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/config"
	"github.com/stemsi/examsession/internal/model"
)

// Sink receives batches of session events.
type Sink interface {
	Write(ctx context.Context, batch []model.SessionEvent) error
}

// RedisSink pushes events onto the session events queue and fans them out on
// the exam and session monitor channels. Submissions are also queued on the
// results queue for downstream grading consumers.
type RedisSink struct {
	rdb *redis.Client
}

// NewRedisSink creates a new RedisSink.
func NewRedisSink(rdb *redis.Client) *RedisSink {
	return &RedisSink{rdb: rdb}
}

// Write sends the whole batch in one pipeline.
func (s *RedisSink) Write(ctx context.Context, batch []model.SessionEvent) error {
	pipe := s.rdb.Pipeline()
	for _, evt := range batch {
		data, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		pipe.RPush(ctx, config.WorkerKey.SessionEventsQueue, data)
		if evt.Type == model.EventSessionSubmitted {
			pipe.RPush(ctx, config.WorkerKey.ResultsQueue, data)
		}
		pipe.Publish(ctx, config.ChannelKey.ExamMonitorChannel(evt.ExamID.String()), data)
		pipe.Publish(ctx, config.ChannelKey.SessionMonitorChannel(evt.SessionID.String()), data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

// LogSink writes events as structured log lines. Used when Redis is not configured.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a new LogSink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "event_log").Logger()}
}

// Write logs every event of the batch.
func (s *LogSink) Write(_ context.Context, batch []model.SessionEvent) error {
	for _, evt := range batch {
		e := s.log.Info().
			Str("type", string(evt.Type)).
			Str("session_id", evt.SessionID.String()).
			Str("exam_id", evt.ExamID.String()).
			Str("student_id", evt.StudentID.String()).
			Time("at", evt.At)
		if evt.QuestionID != "" {
			e = e.Str("question_id", evt.QuestionID)
		}
		if evt.Score != nil {
			e = e.Int("score", *evt.Score)
		}
		if evt.TotalMarks != nil {
			e = e.Int("total_marks", *evt.TotalMarks)
		}
		if evt.Reason != "" {
			e = e.Str("reason", string(evt.Reason))
		}
		e.Msg("Session event")
	}
	return nil
}
