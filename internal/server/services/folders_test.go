package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/pathx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/folders"
)

type flakyFiles struct {
	files.Repository
	mu         sync.Mutex
	failUpdate map[string]error
	createErr  error
}

func (f *flakyFiles) Update(ctx context.Context, id string, patch models.FilePatch) error {
	f.mu.Lock()
	err := f.failUpdate[id]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Repository.Update(ctx, id, patch)
}

func (f *flakyFiles) Create(ctx context.Context, file *models.File) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.Repository.Create(ctx, file)
}

func (f *flakyFiles) heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUpdate = nil
	f.createErr = nil
}

type flakyFolders struct {
	folders.Repository
	mu         sync.Mutex
	failUpdate map[string]error
}

func (f *flakyFolders) Update(ctx context.Context, id string, patch models.FolderPatch) error {
	f.mu.Lock()
	err := f.failUpdate[id]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Repository.Update(ctx, id, patch)
}

var errBoom = errors.New("boom")

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	a := fx.mkdir(t, "", "A")
	assert.Equal(t, "", a.ParentPath)
	assert.Equal(t, admin.ID, a.OwnerID)

	b := fx.mkdir(t, "A", "B")
	assert.Equal(t, "A", b.ParentPath)
	assert.Equal(t, "A/B", b.FullPath())

	t.Run("duplicate at root", func(t *testing.T) {
		_, err := fx.svc.CreateFolder(ctx, admin, "", "A")
		require.ErrorIs(t, err, common.ErrDuplicateName)
	})

	t.Run("same name under another parent is fine", func(t *testing.T) {
		_, err := fx.svc.CreateFolder(ctx, admin, "A/B", "A")
		require.NoError(t, err)
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := fx.svc.CreateFolder(ctx, admin, "nope", "x")
		require.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("invalid names", func(t *testing.T) {
		for _, name := range []string{"", "a/b", ".", ".."} {
			_, err := fx.svc.CreateFolder(ctx, admin, "", name)
			require.ErrorIs(t, err, common.ErrInvalidPath, name)
		}
	})

	t.Run("contributor cannot create folders", func(t *testing.T) {
		_, err := fx.svc.CreateFolder(ctx, contributor, "", "C")
		require.ErrorIs(t, err, common.ErrPermissionDenied)
		assert.False(t, fx.folderExists(t, "C"))
	})

	assert.Equal(t, []string{models.ActionCreateFolder, models.ActionCreateFolder, models.ActionCreateFolder}, fx.sink.actions())
}

func TestFolderFullPathRoundTrip(t *testing.T) {
	fx := newFixture(t)
	fx.mkdir(t, "", "A")
	fx.mkdir(t, "A", "B")
	fx.mkdir(t, "A/B", "C")
	fx.mkdir(t, "", "D")

	all, err := fx.repos.Folders().ListByOwner(context.Background(), admin.ID)
	require.NoError(t, err)
	require.Len(t, all, 4)

	for _, f := range all {
		full := pathx.MustParse(f.FullPath())
		joined, err := pathx.Join(full.Parent(), f.Name)
		require.NoError(t, err)
		assert.True(t, joined.Equal(full), f.FullPath())
	}
}

func TestRenameFolderCascades(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	a := fx.mkdir(t, "", "A")
	b := fx.mkdir(t, "A", "B")
	c := fx.mkdir(t, "A/B", "C")
	near := fx.mkdir(t, "", "A2")
	top := fx.upload(t, "A", "top.txt", "1")
	f := fx.upload(t, "A/B", "f.txt", "2")
	deep := fx.upload(t, "A/B/C", "deep.txt", "3")
	other := fx.upload(t, "A2", "other.txt", "4")

	renamed, err := fx.svc.RenameFolder(ctx, admin, a.ID, "Z")
	require.NoError(t, err)
	assert.Equal(t, "Z", renamed.Name)

	assert.True(t, fx.folderExists(t, "Z/B"))
	assert.True(t, fx.folderExists(t, "Z/B/C"))
	assert.False(t, fx.folderExists(t, "A/B"))
	assert.False(t, fx.folderExists(t, "A"))

	assert.Equal(t, "Z", fx.folder(t, b.ID).ParentPath)
	assert.Equal(t, "Z/B", fx.folder(t, c.ID).ParentPath)
	assert.Equal(t, "", fx.folder(t, near.ID).ParentPath)

	assert.Equal(t, "Z", fx.file(t, top.ID).Folder)
	assert.Equal(t, "Z/B", fx.file(t, f.ID).Folder)
	assert.Equal(t, "Z/B/C", fx.file(t, deep.ID).Folder)
	assert.Equal(t, "A2", fx.file(t, other.ID).Folder)

	all, err := fx.repos.Files().List(ctx, models.AllRecords)
	require.NoError(t, err)
	for _, file := range all {
		assert.False(t, pathx.IsUnder(file.Folder, "A"), "file %s still under A", file.Name)
	}

	ev := fx.sink.events[len(fx.sink.events)-1]
	assert.Equal(t, models.ActionRenameFolder, ev.Action)
	assert.Equal(t, "A", ev.TargetName)
	assert.Equal(t, "5", ev.Details["rebased"])
}

func TestRenameFolderRules(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.mkdir(t, "", "A")
	fx.mkdir(t, "", "B")

	_, err := fx.svc.RenameFolder(ctx, admin, a.ID, "B")
	require.ErrorIs(t, err, common.ErrDuplicateName)
	assert.Equal(t, "A", fx.folder(t, a.ID).Name)

	_, err = fx.svc.RenameFolder(ctx, admin, a.ID, "x/y")
	require.ErrorIs(t, err, common.ErrInvalidPath)

	_, err = fx.svc.RenameFolder(ctx, contributor, a.ID, "C")
	require.ErrorIs(t, err, common.ErrPermissionDenied)

	_, err = fx.svc.RenameFolder(ctx, admin, "missing", "C")
	require.ErrorIs(t, err, common.ErrNotFound)

	events := len(fx.sink.events)
	same, err := fx.svc.RenameFolder(ctx, admin, a.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, "A", same.Name)
	assert.Len(t, fx.sink.events, events)
}

func TestRenameFolderPartialCascadeAndRetry(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	a := fx.mkdir(t, "", "A")
	b := fx.mkdir(t, "A", "B")
	f1 := fx.upload(t, "A", "one.txt", "1")
	f2 := fx.upload(t, "A/B", "two.txt", "2")
	f3 := fx.upload(t, "A/B", "three.txt", "3")

	flaky := &flakyFiles{Repository: fx.repos.Files(), failUpdate: map[string]error{f2.ID: errBoom}}
	fx.svc.files = flaky

	renamed, err := fx.svc.RenameFolder(ctx, admin, a.ID, "Z")
	require.ErrorIs(t, err, common.ErrPartialCascade)
	require.NotNil(t, renamed)
	assert.Equal(t, "Z", fx.folder(t, a.ID).Name)

	var pe *common.PartialCascadeError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, admin.ID, pe.OwnerID)
	assert.Equal(t, "A", pe.OldPath)
	assert.Equal(t, "Z", pe.NewPath)
	assert.Equal(t, 3, pe.Rebased)
	assert.Equal(t, []string{f2.ID}, pe.Failed)
	assert.Equal(t, OutcomePartialCascadeFailure, OutcomeOf(err))

	assert.Equal(t, "Z", fx.folder(t, b.ID).ParentPath)
	assert.Equal(t, "Z", fx.file(t, f1.ID).Folder)
	assert.Equal(t, "A/B", fx.file(t, f2.ID).Folder)
	assert.Equal(t, "Z/B", fx.file(t, f3.ID).Folder)

	flaky.heal()
	before := *fx.file(t, f3.ID)

	n, err := fx.svc.RetryCascade(ctx, admin, pe.OwnerID, pe.OldPath, pe.NewPath)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Z/B", fx.file(t, f2.ID).Folder)
	assert.Equal(t, before, *fx.file(t, f3.ID))

	n, err = fx.svc.RetryCascade(ctx, admin, pe.OwnerID, pe.OldPath, pe.NewPath)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCascadeFolderFailureAndVanishedRecords(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	a := fx.mkdir(t, "", "A")
	b := fx.mkdir(t, "A", "B")
	c := fx.mkdir(t, "A", "C")

	fx.svc.folders = &flakyFolders{
		Repository: fx.repos.Folders(),
		failUpdate: map[string]error{b.ID: errBoom, c.ID: common.ErrNotFound},
	}

	_, err := fx.svc.RenameFolder(ctx, admin, a.ID, "Z")
	var pe *common.PartialCascadeError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, []string{b.ID}, pe.Failed)
	assert.Zero(t, pe.Rebased)
}

func TestRetryCascadeRules(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	_, err := fx.svc.RetryCascade(ctx, contributor, admin.ID, "A", "Z")
	require.ErrorIs(t, err, common.ErrPermissionDenied)

	_, err = fx.svc.RetryCascade(ctx, admin, admin.ID, "", "Z")
	require.ErrorIs(t, err, common.ErrInvalidPath)

	_, err = fx.svc.RetryCascade(ctx, admin, admin.ID, "A", "A/B")
	require.ErrorIs(t, err, common.ErrInvalidPath)
}

func TestDeleteFolder(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	a := fx.mkdir(t, "", "A")
	f := fx.upload(t, "A", "f.txt", "x")

	t.Run("non-empty folder is refused", func(t *testing.T) {
		err := fx.svc.DeleteFolder(ctx, admin, a.ID)
		require.ErrorIs(t, err, common.ErrFolderNotEmpty)
		assert.Equal(t, "A", fx.folder(t, a.ID).Name)
		assert.Equal(t, "A", fx.file(t, f.ID).Folder)
	})

	t.Run("only direct files block", func(t *testing.T) {
		p := fx.mkdir(t, "", "P")
		fx.mkdir(t, "P", "Q")
		fx.upload(t, "P/Q", "deep.txt", "x")

		require.NoError(t, fx.svc.DeleteFolder(ctx, admin, p.ID))
		assert.False(t, fx.folderExists(t, "P"))
	})

	t.Run("restricted guest", func(t *testing.T) {
		e := fx.mkdir(t, "", "E")
		err := fx.svc.DeleteFolder(ctx, guest, e.ID)
		require.ErrorIs(t, err, common.ErrPermissionDenied)
		assert.True(t, fx.folderExists(t, "E"))
	})

	t.Run("empty folder", func(t *testing.T) {
		e := fx.mkdir(t, "", "Empty")
		require.NoError(t, fx.svc.DeleteFolder(ctx, manager, e.ID))
		_, err := fx.repos.Folders().Get(ctx, e.ID)
		require.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestRenameFolderRewritesOwnerRecordsOnly(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.mkdir(t, "", "A")
	mine := fx.upload(t, "A", "mine.txt", "1")

	res, err := fx.svc.Upload(ctx, contributor, "A", UploadInput{Name: "theirs.txt", Size: 1, Body: strings.NewReader("2")})
	require.NoError(t, err)

	_, err = fx.svc.RenameFolder(ctx, admin, a.ID, "Z")
	require.NoError(t, err)

	assert.Equal(t, "Z", fx.file(t, mine.ID).Folder)
	assert.Equal(t, "A", fx.file(t, res.File.ID).Folder)
}
