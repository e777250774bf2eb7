// Package redis provides the TTL-backed timer store. The remaining TTL on a
// key is the only clock the game uses for long-running player actions; there
// are no in-process timers or schedulers for travel and exploration.
package redis

import (
	"context"
	"time"
)

// Store is the minimal key-value interface with expiry semantics used as the
// canonical timer mechanism. TTL reports the remaining lifetime of a key; a
// negative duration means the key is absent or already expired, which callers
// interpret as "the action is finished" (or never started).
//
// Implementations must tolerate backend outages: reads degrade to "no data"
// instead of surfacing an error, so losing a TTL lookup never crashes an
// in-progress player command.
type Store interface {
	// Set writes key=value with the given expiry. A non-positive ttl stores
	// the key without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value for key, or ("", false) when absent, expired, or
	// unreachable.
	Get(ctx context.Context, key string) (string, bool)
	// TTL returns the remaining lifetime of key. Negative when the key is
	// absent, expired, has no expiry set, or the backend is unreachable.
	TTL(ctx context.Context, key string) time.Duration
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Set-membership operations, forwarded for ignore lists.
	SAdd(ctx context.Context, set string, members ...string) error
	SRem(ctx context.Context, set string, members ...string) error
	SMembers(ctx context.Context, set string) []string
}
