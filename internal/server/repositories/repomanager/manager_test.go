package repomanager

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

func TestNew_Memory(t *testing.T) {
	m, err := New(Options{Backend: BackendMemory})
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(context.Background()))
	assert.NotNil(t, m.Folders())
	assert.NotNil(t, m.Files())
	assert.NotNil(t, m.ActivityLogs())
	assert.NoError(t, m.Close())
}

func TestNew_Badger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "meta")

	m, err := New(Options{Backend: BackendBadger, BadgerDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	require.NoError(t, m.RunMigrations(ctx))
	require.NoError(t, m.Folders().Create(ctx, &models.Folder{ID: "1", Name: "docs", OwnerID: "u1"}))

	got, err := m.Folders().Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "docs", got.Name)
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(Options{Backend: "mysql"})
	assert.Error(t, err)
}
