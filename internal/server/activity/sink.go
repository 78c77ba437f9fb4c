// Package activity records what principals did. Emitting is fire-and-forget:
// sinks never report failures to the caller.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/activitylogs"
)

type Event struct {
	PrincipalID   string
	PrincipalName string
	Action        string
	TargetKind    string
	TargetName    string
	Details       map[string]string
}

type Sink interface {
	Emit(ctx context.Context, e Event)
}

// RepositorySink persists events through the activity log repository.
type RepositorySink struct {
	repo   activitylogs.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewRepositorySink(repo activitylogs.Repository, logger logging.Logger) *RepositorySink {
	return &RepositorySink{repo: repo, logger: logger, now: time.Now}
}

func (s *RepositorySink) Emit(ctx context.Context, e Event) {
	entry := &models.ActivityLog{
		ID:            uuid.NewString(),
		PrincipalID:   e.PrincipalID,
		PrincipalName: e.PrincipalName,
		Action:        e.Action,
		TargetKind:    e.TargetKind,
		TargetName:    e.TargetName,
		Details:       e.Details,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Warn(ctx, "activity not recorded", "action", e.Action, "target", e.TargetName, "error", err)
	}
}

// LogSink writes events to the structured log.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, e Event) {
	args := []any{
		"principal_id", e.PrincipalID,
		"action", e.Action,
		"target_kind", e.TargetKind,
		"target_name", e.TargetName,
	}
	for k, v := range e.Details {
		args = append(args, k, v)
	}
	s.logger.Info(ctx, "activity", args...)
}

// Multi fans an event out to every sink in order.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, e Event) {
	for _, s := range m {
		s.Emit(ctx, e)
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(context.Context, Event) {}
