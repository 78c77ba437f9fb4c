package blobstore

import (
	"context"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

func runStoreContract(t *testing.T, s Store, urlPrefix string) {
	ctx := context.Background()
	key := "users/u1/2024/3/1/abc"

	require.NoError(t, s.Put(ctx, key, strings.NewReader("hello"), 5, "text/plain"))

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	size, err := s.Stat(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	u, err := s.URL(ctx, key)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, urlPrefix), u)

	require.NoError(t, s.Delete(ctx, key))

	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, key), common.ErrNotFound)
	_, err = s.URL(ctx, key)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.Stat(ctx, key)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	runStoreContract(t, s, "memory://")
	assert.Equal(t, 0, s.Len())
}

func TestFilesystemStore(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	runStoreContract(t, s, "file://")
}

func TestFilesystemStore_RejectsEscapingKeys(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	err = s.Put(context.Background(), "../outside", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, common.ErrInvalidPath)
}

func TestNewStorageKey(t *testing.T) {
	orig := now
	now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }
	defer func() { now = orig }()

	k := NewStorageKey("u1")
	assert.Regexp(t, regexp.MustCompile(`^users/u1/2024/3/9/[0-9a-f-]{36}$`), k)
	assert.NotEqual(t, k, NewStorageKey("u1"))

	assert.True(t, strings.HasPrefix(NewStorageKey("a/b"), "users/a_b/"))
}

func TestOwnedBy(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		owner string
		want  bool
	}{
		{name: "own key", key: NewStorageKey("u1"), owner: "u1", want: true},
		{name: "other owner", key: NewStorageKey("u2"), owner: "u1"},
		{name: "owner id prefix", key: NewStorageKey("u10"), owner: "u1"},
		{name: "escaping", key: "users/u1/../u2/2024/3/9/x", owner: "u1"},
		{name: "outside users", key: "other/u1/x", owner: "u1"},
		{name: "sanitised owner", key: NewStorageKey("a/b"), owner: "a/b", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OwnedBy(tt.key, tt.owner))
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	s, err := NewFromConfig(context.Background(), Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewFromConfig(context.Background(), Options{Backend: BackendFilesystem, Root: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FilesystemStore{}, s)

	_, err = NewFromConfig(context.Background(), Options{Backend: "ftp"})
	assert.Error(t, err)
}
