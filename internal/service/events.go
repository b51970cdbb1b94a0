package service

import "github.com/stemsi/examsession/internal/model"

// EventPublisher receives session lifecycle events. Publish must not block.
type EventPublisher interface {
	Publish(evt model.SessionEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.SessionEvent) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
