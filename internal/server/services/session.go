package services

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type ClipboardMode string

const (
	ModeNone ClipboardMode = ""
	ModeCopy ClipboardMode = "copy"
	ModeCut  ClipboardMode = "cut"
)

type SessionState string

const (
	StateIdle    SessionState = "idle"
	StateHolding SessionState = "holding"
)

// Session is the selection and clipboard of one interactive client. It is
// never persisted.
type Session struct {
	mu        sync.Mutex
	selected  []Item
	clipboard []Item
	mode      ClipboardMode
}

func NewSession() *Session {
	return &Session{}
}

func sameItem(a, b Item) bool { return a.Kind == b.Kind && a.ID == b.ID }

// ToggleSelect adds item to the selection or removes it if already there.
// It reports whether the item is selected afterwards.
func (s *Session) ToggleSelect(item Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.selected, func(x Item) bool { return sameItem(x, item) })
	if i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
		return false
	}
	s.selected = append(s.selected, item)
	return true
}

// SelectAll replaces the selection with items, dropping duplicates.
func (s *Session) SelectAll(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = s.selected[:0]
	for _, it := range items {
		if !slices.ContainsFunc(s.selected, func(x Item) bool { return sameItem(x, it) }) {
			s.selected = append(s.selected, it)
		}
	}
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

func (s *Session) Selected() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selected)
}

// CopyToClipboard snapshots the selection for a later copy-paste and
// returns the number of items held.
func (s *Session) CopyToClipboard() int {
	return s.hold(ModeCopy)
}

// CutToClipboard snapshots the selection for a later move-paste.
func (s *Session) CutToClipboard() int {
	return s.hold(ModeCut)
}

func (s *Session) hold(mode ClipboardMode) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.selected) == 0 {
		s.clipboard, s.mode = nil, ModeNone
		return 0
	}
	s.clipboard = slices.Clone(s.selected)
	s.mode = mode
	return len(s.clipboard)
}

func (s *Session) Clipboard() ([]Item, ClipboardMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.clipboard), s.mode
}

func (s *Session) ClearClipboard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard, s.mode = nil, ModeNone
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clipboard) == 0 {
		return StateIdle
	}
	return StateHolding
}

// afterCut empties both the clipboard and the selection.
func (s *Session) afterCut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard, s.mode = nil, ModeNone
	s.selected = nil
}

// Paste applies the session clipboard at destination. A copy clipboard is
// kept for repeated pastes; a cut clipboard runs Move and is then cleared
// together with the selection.
func (s *DriveService) Paste(ctx context.Context, p models.Principal, sess *Session, destination string) (*BatchResult, error) {
	items, mode := sess.Clipboard()
	if len(items) == 0 {
		return nil, common.ErrClipboardEmpty
	}

	switch mode {
	case ModeCut:
		res, err := s.Move(ctx, p, items, destination)
		if err != nil {
			return nil, err
		}
		sess.afterCut()
		return res, nil
	default:
		return s.Copy(ctx, p, items, destination)
	}
}
