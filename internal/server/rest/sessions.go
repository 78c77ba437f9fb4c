package rest

import (
	"sync"

	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

// SessionRegistry keeps one in-memory selection/clipboard per principal.
// Sessions are lost on restart.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*services.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*services.Session)}
}

func (r *SessionRegistry) Get(principalID string) *services.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[principalID]
	if !ok {
		s = services.NewSession()
		r.sessions[principalID] = s
	}
	return s
}
