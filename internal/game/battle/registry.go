package battle

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// EngagedError reports an attempt to start a battle for a user who is
// already in one.
type EngagedError struct {
	UserID int64
}

func (e *EngagedError) Error() string {
	return fmt.Sprintf("user %d is already in a battle", e.UserID)
}

// Registry tracks which users are in which battle. Both indexes are kept in
// lockstep: every participant entry points at a registered battle, and every
// registered battle is reachable from both its participants.
type Registry struct {
	mu            sync.Mutex
	byParticipant map[int64]uuid.UUID
	byID          map[uuid.UUID]*Battle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byParticipant: make(map[int64]uuid.UUID),
		byID:          make(map[uuid.UUID]*Battle),
	}
}

// Register adds a battle, rejecting it when either participant is already
// engaged.
func (r *Registry) Register(b *Battle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byParticipant[b.A.OwnerID]; ok {
		return &EngagedError{UserID: b.A.OwnerID}
	}
	if _, ok := r.byParticipant[b.B.OwnerID]; ok {
		return &EngagedError{UserID: b.B.OwnerID}
	}
	r.byParticipant[b.A.OwnerID] = b.ID
	r.byParticipant[b.B.OwnerID] = b.ID
	r.byID[b.ID] = b
	return nil
}

// Remove drops a battle and both participant entries. Unknown IDs are a
// no-op.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byParticipant, b.A.OwnerID)
	delete(r.byParticipant, b.B.OwnerID)
	delete(r.byID, id)
}

// ByUser returns the battle a user is in, if any.
func (r *Registry) ByUser(userID int64) (*Battle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byParticipant[userID]
	if !ok {
		return nil, false
	}
	return r.byID[id], true
}

// ByID returns a battle by its ID.
func (r *Registry) ByID(id uuid.UUID) (*Battle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	return b, ok
}

// Len returns the number of active battles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
