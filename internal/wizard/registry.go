package wizard

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/moneyfer/moneyfer/internal/apperr"
	"github.com/moneyfer/moneyfer/internal/transfer"
)

// DepsFunc builds the dependencies of a new wizard owned by owner.
type DepsFunc func(owner string) Deps

// Registry keeps live wizard sessions by id. A session is dropped once it
// completes or exits.
type Registry struct {
	newDeps DepsFunc

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	owner  string
	wizard *Wizard
}

// NewRegistry constructs an empty registry.
func NewRegistry(newDeps DepsFunc) *Registry {
	return &Registry{newDeps: newDeps, sessions: make(map[string]*session)}
}

// Start opens a new wizard for owner.
func (r *Registry) Start(owner string) (string, *Wizard) {
	id := uuid.NewString()
	deps := r.newDeps(owner)

	onExit, onComplete := deps.OnExit, deps.OnComplete
	deps.OnExit = func() {
		r.Remove(id)
		if onExit != nil {
			onExit()
		}
	}
	deps.OnComplete = func(t transfer.Transfer) {
		r.Remove(id)
		if onComplete != nil {
			onComplete(t)
		}
	}

	w := New(deps)
	r.mu.Lock()
	r.sessions[id] = &session{owner: owner, wizard: w}
	r.mu.Unlock()
	return id, w
}

// Get returns the session if it exists and belongs to owner.
func (r *Registry) Get(owner, id string) (*Wizard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.owner != owner {
		return nil, fmt.Errorf("%w: send session not found", apperr.ErrNotFound)
	}
	return s.wizard, nil
}

// Remove closes and forgets a session. Unknown ids are ignored.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.wizard.Close()
	}
}

// RemoveOwner drops every session of owner, used on logout.
func (r *Registry) RemoveOwner(owner string) {
	r.mu.Lock()
	var closing []*Wizard
	for id, s := range r.sessions {
		if s.owner == owner {
			closing = append(closing, s.wizard)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, w := range closing {
		w.Close()
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close tears down every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()
	for _, s := range sessions {
		s.wizard.Close()
	}
}
