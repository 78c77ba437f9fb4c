package activity

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/activitylogs"
)

func newBufferLogger() (logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil))), &buf
}

type failingRepo struct {
	activitylogs.Repository
}

func (failingRepo) Create(context.Context, *models.ActivityLog) error {
	return errors.New("db down")
}

var event = Event{
	PrincipalID:   "u1",
	PrincipalName: "alice",
	Action:        models.ActionRenameFolder,
	TargetKind:    models.TargetFolder,
	TargetName:    "docs",
	Details:       map[string]string{"new_name": "papers"},
}

func TestRepositorySink_Persists(t *testing.T) {
	repo := activitylogs.NewMemoryRepository()
	s := NewRepositorySink(repo, logging.Nop{})
	s.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	s.Emit(context.Background(), event)

	got, err := repo.ListRecent(context.Background(), models.AllRecords, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.ActionRenameFolder, got[0].Action)
	assert.Equal(t, "papers", got[0].Details["new_name"])
	assert.NotEmpty(t, got[0].ID)
}

func TestRepositorySink_SwallowsErrors(t *testing.T) {
	log, buf := newBufferLogger()
	s := NewRepositorySink(failingRepo{}, log)

	assert.NotPanics(t, func() { s.Emit(context.Background(), event) })
	assert.Contains(t, buf.String(), "activity not recorded")
	assert.Contains(t, buf.String(), "db down")
}

func TestLogSinkAndMulti(t *testing.T) {
	log, buf := newBufferLogger()
	repo := activitylogs.NewMemoryRepository()

	m := Multi{NewLogSink(log), NewRepositorySink(repo, log), Discard{}}
	m.Emit(context.Background(), event)

	out := buf.String()
	assert.Contains(t, out, `action="RENAME FOLDER"`)
	assert.Contains(t, out, "new_name=papers")

	got, err := repo.ListRecent(context.Background(), models.AllRecords, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
