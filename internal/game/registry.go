package game

import (
	"reflect"
	"sync"
)

// Registry maps session IDs to live sessions. Entries are inserted when a
// session is created and removed when it is finalized or expires.
type Registry[S Session] struct {
	sessions map[string]S
	mu       sync.RWMutex
}

// NewRegistry creates an empty session registry.
func NewRegistry[S Session]() *Registry[S] {
	return &Registry[S]{
		sessions: make(map[string]S),
	}
}

// RegisterUnless adds s only when no registered session satisfies conflict.
// The check and the insert happen under one lock. It returns the conflicting
// session and false when one exists.
func (r *Registry[S]) RegisterUnless(s S, conflict func(S) bool) (S, bool, error) {
	var zero S
	if isNil(s) {
		return zero, false, ErrNilSession
	}
	if s.ID() == "" {
		return zero, false, ErrEmptySessionID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if conflict(existing) {
			return existing, false, nil
		}
	}
	if _, exists := r.sessions[s.ID()]; exists {
		return zero, false, ErrDuplicateID
	}
	r.sessions[s.ID()] = s
	return zero, true, nil
}

// Get retrieves a session by ID.
func (r *Registry[S]) Get(id string) (S, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Find returns the first session matching pred.
func (r *Registry[S]) Find(pred func(S) bool) (S, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if pred(s) {
			return s, true
		}
	}
	var zero S
	return zero, false
}

// Remove deletes a session by ID.
// Returns true if the session was found and removed.
func (r *Registry[S]) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		return true
	}
	return false
}

// Count returns the number of live sessions.
func (r *Registry[S]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// isNil reports whether s is nil, including a typed nil pointer.
func isNil(s any) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
