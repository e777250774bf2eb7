package player_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskfall/adventure/internal/game/player"
	"github.com/duskfall/adventure/internal/storage/redis"
)

func TestIgnoreList(t *testing.T) {
	ctx := context.Background()
	list := player.NewIgnoreList(redis.NewMemory(), "ignored")

	assert.False(t, list.Contains(ctx, "channel:1"))
	assert.Empty(t, list.All(ctx))

	require.NoError(t, list.Add(ctx, "channel:1"))
	require.NoError(t, list.Add(ctx, "guild:2"))
	assert.True(t, list.Contains(ctx, "channel:1"))
	assert.True(t, list.Contains(ctx, "guild:2"))
	assert.Len(t, list.All(ctx), 2)

	require.NoError(t, list.Remove(ctx, "channel:1"))
	assert.False(t, list.Contains(ctx, "channel:1"))
	assert.True(t, list.Contains(ctx, "guild:2"))

	// Removing an absent member is a no-op.
	require.NoError(t, list.Remove(ctx, "channel:1"))
}
