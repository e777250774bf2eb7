package player

import (
	"context"

	"github.com/duskfall/adventure/internal/storage/redis"
)

// IgnoreList is a persistent set of external IDs (channels, guilds) the game
// should not respond in. Backed by a store set so it survives restarts.
type IgnoreList struct {
	store redis.Store
	key   string
}

// NewIgnoreList creates an ignore list persisted under the given set key.
func NewIgnoreList(store redis.Store, key string) *IgnoreList {
	return &IgnoreList{store: store, key: key}
}

// Add puts an ID on the list.
func (l *IgnoreList) Add(ctx context.Context, id string) error {
	return l.store.SAdd(ctx, l.key, id)
}

// Remove takes an ID off the list.
func (l *IgnoreList) Remove(ctx context.Context, id string) error {
	return l.store.SRem(ctx, l.key, id)
}

// Contains reports whether an ID is on the list.
func (l *IgnoreList) Contains(ctx context.Context, id string) bool {
	for _, member := range l.store.SMembers(ctx, l.key) {
		if member == id {
			return true
		}
	}
	return false
}

// All returns every ID on the list.
func (l *IgnoreList) All(ctx context.Context) []string {
	return l.store.SMembers(ctx, l.key)
}
