package service

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/random"
	"github.com/stemsi/examsession/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.SessionEvent
}

func (p *recordingPublisher) Publish(evt model.SessionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	exams    *ExamService
	pools    *QuestionPoolService
	sessions *ExamSessionService
	events   *recordingPublisher
}

func newFixture() *fixture {
	examRepo := repository.NewExamRepository()
	poolRepo := repository.NewQuestionPoolRepository()
	sessionRepo := repository.NewExamSessionRepository()
	events := &recordingPublisher{}
	log := zerolog.Nop()

	return &fixture{
		exams:    NewExamService(examRepo, poolRepo, sessionRepo, events, log),
		pools:    NewQuestionPoolService(poolRepo, log),
		sessions: NewExamSessionService(examRepo, sessionRepo, random.New(42), events, log),
		events:   events,
	}
}
