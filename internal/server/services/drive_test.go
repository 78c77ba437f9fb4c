package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/pathx"
	"github.com/dmitrijs2005/gophdrive/internal/server/activity"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
)

var (
	admin       = models.Principal{ID: "u-admin", Name: "Ada", Role: models.RoleAdministrator}
	manager     = models.Principal{ID: "u-manager", Name: "Max", Role: models.RoleManager}
	contributor = models.Principal{ID: "u-contrib", Name: "Cole", Role: models.RoleContributor}
	guest       = models.Principal{ID: "u-guest", Name: "Gus", Role: models.RoleRestrictedGuest}
)

// -------- test fakes --------

type recordingSink struct {
	mu     sync.Mutex
	events []activity.Event
}

func (r *recordingSink) Emit(_ context.Context, e activity.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	svc   *DriveService
	repos *repomanager.MemoryRepositoryManager
	blobs *blobstore.MemoryStore
	sink  *recordingSink

	generatedKeys []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos := repomanager.NewMemoryRepositoryManager()
	blobs := blobstore.NewMemoryStore()
	rec := &recordingSink{}
	sink := activity.Multi{rec, activity.NewRepositorySink(repos.ActivityLogs(), logging.Nop{})}

	svc := NewDriveService(repos, blobs, sink, logging.Nop{}, WithCascadeConcurrency(4))
	var mu sync.Mutex
	n := 0
	svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%03d", n)
	}

	fx := &fixture{svc: svc, repos: repos, blobs: blobs, sink: rec}
	svc.newStorageKey = func(ownerID string) string {
		key := blobstore.NewStorageKey(ownerID)
		fx.generatedKeys = append(fx.generatedKeys, key)
		return key
	}
	return fx
}

func (f *fixture) mkdir(t *testing.T, parent, name string) *models.Folder {
	t.Helper()
	folder, err := f.svc.CreateFolder(context.Background(), admin, parent, name)
	require.NoError(t, err)
	return folder
}

func (f *fixture) upload(t *testing.T, folder, name, body string) *models.File {
	t.Helper()
	res, err := f.svc.Upload(context.Background(), admin, folder, UploadInput{
		Name:     name,
		MimeType: "text/plain",
		Size:     int64(len(body)),
		Body:     strings.NewReader(body),
	})
	require.NoError(t, err)
	return res.File
}

func (f *fixture) file(t *testing.T, id string) *models.File {
	t.Helper()
	file, err := f.repos.Files().Get(context.Background(), id)
	require.NoError(t, err)
	return file
}

func (f *fixture) folder(t *testing.T, id string) *models.Folder {
	t.Helper()
	folder, err := f.repos.Folders().Get(context.Background(), id)
	require.NoError(t, err)
	return folder
}

// folderExists looks a folder up by full path the way the service does.
func (f *fixture) folderExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := f.svc.findFolder(context.Background(), models.AllRecords, pathx.MustParse(path))
	return err == nil
}
