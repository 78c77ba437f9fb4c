package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

func TestSessionSelection(t *testing.T) {
	s := NewSession()
	a := Item{Kind: KindFile, ID: "1", Name: "a.txt"}
	b := Item{Kind: KindFolder, ID: "1", Name: "docs"}

	assert.True(t, s.ToggleSelect(a))
	assert.True(t, s.ToggleSelect(b))
	assert.Equal(t, []Item{a, b}, s.Selected())

	assert.False(t, s.ToggleSelect(a))
	assert.Equal(t, []Item{b}, s.Selected())

	s.SelectAll([]Item{a, b, a})
	assert.Equal(t, []Item{a, b}, s.Selected())

	s.ClearSelection()
	assert.Empty(t, s.Selected())
}

func TestSessionClipboardStates(t *testing.T) {
	s := NewSession()
	assert.Equal(t, StateIdle, s.State())

	assert.Zero(t, s.CopyToClipboard())
	assert.Equal(t, StateIdle, s.State())

	s.ToggleSelect(Item{Kind: KindFile, ID: "1"})
	assert.Equal(t, 1, s.CutToClipboard())
	assert.Equal(t, StateHolding, s.State())

	items, mode := s.Clipboard()
	assert.Len(t, items, 1)
	assert.Equal(t, ModeCut, mode)

	// Later selection changes do not touch the snapshot.
	s.ClearSelection()
	items, _ = s.Clipboard()
	assert.Len(t, items, 1)

	s.ClearClipboard()
	assert.Equal(t, StateIdle, s.State())
}

func TestPasteCopyKeepsClipboard(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.mkdir(t, "", "X")
	fx.mkdir(t, "", "Y")
	f := fx.upload(t, "", "f.txt", "x")

	s := NewSession()
	s.ToggleSelect(Item{Kind: KindFile, ID: f.ID})
	s.CopyToClipboard()

	for _, dest := range []string{"X", "Y"} {
		res, err := fx.svc.Paste(ctx, admin, s, dest)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Succeeded)
	}
	assert.Equal(t, StateHolding, s.State())
	assert.Len(t, s.Selected(), 1)
	assert.Equal(t, 3, fx.blobs.Len())
	assert.Equal(t, "", fx.file(t, f.ID).Folder)
}

func TestPasteCutMovesAndClears(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.mkdir(t, "", "X")
	f := fx.upload(t, "", "f.txt", "x")

	s := NewSession()
	s.ToggleSelect(Item{Kind: KindFile, ID: f.ID})
	s.CutToClipboard()

	res, err := fx.svc.Paste(ctx, admin, s, "X")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, "X", fx.file(t, f.ID).Folder)
	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, s.Selected())
	assert.Equal(t, 1, fx.blobs.Len())

	_, err = fx.svc.Paste(ctx, admin, s, "X")
	require.ErrorIs(t, err, common.ErrClipboardEmpty)
}

func TestPasteCutFailureKeepsClipboard(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	f := fx.upload(t, "", "f.txt", "x")

	s := NewSession()
	s.ToggleSelect(Item{Kind: KindFile, ID: f.ID})
	s.CutToClipboard()

	_, err := fx.svc.Paste(ctx, admin, s, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, StateHolding, s.State())
}
