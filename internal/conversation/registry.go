package conversation

import (
	"context"
	"sync"

	"cafe_voice_backend/platform/apperr"
)

// Registry maps active call identifiers to their session state. A session
// exists exactly while its call is live and not yet finalized or aborted.
type Registry interface {
	// GetOrCreate returns the session for callID, creating it on the
	// call's first turn. The second return reports whether it was created.
	GetOrCreate(ctx context.Context, callID, callerPhone string) (*State, bool, error)
	// Update replaces the stored session with the given state.
	Update(ctx context.Context, state *State) error
	// Delete removes the session. Deleting an absent session is a no-op.
	Delete(ctx context.Context, callID string) error
}

// MemoryRegistry is the in-process Registry. State is copied on the way in
// and out so concurrent turns for different calls never alias each other.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*State
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[string]*State)}
}

func (r *MemoryRegistry) GetOrCreate(_ context.Context, callID, callerPhone string) (*State, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[callID]; ok {
		return existing.Clone(), false, nil
	}
	state := NewState(callID, callerPhone)
	r.sessions[callID] = state.Clone()
	return state, true, nil
}

func (r *MemoryRegistry) Update(_ context.Context, state *State) error {
	if state == nil || state.CallID == "" {
		return apperr.BadRequest("session state requires a call id").WithOp("registry.update")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[state.CallID] = state.Clone()
	return nil
}

func (r *MemoryRegistry) Delete(_ context.Context, callID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, callID)
	return nil
}

// Len reports the number of active sessions, for readiness and tests.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

var _ Registry = (*MemoryRegistry)(nil)
