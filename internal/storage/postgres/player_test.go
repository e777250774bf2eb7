package postgres_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskfall/adventure/internal/game/player"
	"github.com/duskfall/adventure/internal/storage/postgres"
	"github.com/duskfall/adventure/internal/testutil"
)

var ownerSeq atomic.Int64

func init() {
	ownerSeq.Store(time.Now().UnixNano())
}

// uniqueOwner returns an owner ID unused by any other test sharing the
// database.
func uniqueOwner() int64 {
	return ownerSeq.Add(1)
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, uniqueOwner())
}

func makeTestPlayer(ownerID int64, name string) *player.Player {
	p := player.New(ownerID, name, 0, time.Now().UTC().Truncate(time.Microsecond))
	p.AddExp(120)
	p.AddGold(75)
	p.MarkExplored(1)
	p.MarkExplored(2)
	p.Compendium.Record(3)
	p.Compendium.Record(17)
	return p
}

func TestPlayerRepository_UpsertAndGet(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	owner := uniqueOwner()
	p := makeTestPlayer(owner, uniqueName("rosa"))
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.MapID, got.MapID)
	assert.Equal(t, player.NoNextMap, got.NextMapID)
	assert.Equal(t, 120, got.Exp)
	assert.Equal(t, 75, got.Gold)
	assert.True(t, got.HasExplored(0), "home node explored at creation")
	assert.True(t, got.HasExplored(1))
	assert.True(t, got.HasExplored(2))
	assert.False(t, got.HasExplored(3))
	assert.True(t, got.Compendium.Captured(3))
	assert.True(t, got.Compendium.Captured(17))
	assert.Equal(t, 2, got.Compendium.Count())
	assert.Equal(t, p.CreatedAt, got.CreatedAt.UTC())
}

func TestPlayerRepository_UpsertUpdatesExisting(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	owner := uniqueOwner()
	p := makeTestPlayer(owner, uniqueName("inez"))
	require.NoError(t, repo.Upsert(ctx, p))

	p.MapID = 5
	p.AddExp(80)
	p.MarkExplored(5)
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 5, got.MapID)
	assert.Equal(t, 200, got.Exp)
	assert.True(t, got.HasExplored(5))
}

func TestPlayerRepository_NameCollision(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("dup")
	require.NoError(t, repo.Upsert(ctx, makeTestPlayer(uniqueOwner(), name)))

	err := repo.Upsert(ctx, makeTestPlayer(uniqueOwner(), name))
	assert.ErrorIs(t, err, postgres.ErrPlayerNameTaken)
}

func TestPlayerRepository_GetMissing(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))

	_, err := repo.Get(context.Background(), uniqueOwner())
	assert.ErrorIs(t, err, postgres.ErrPlayerNotFound)
}

func TestPlayerRepository_Delete(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	owner := uniqueOwner()
	require.NoError(t, repo.Upsert(ctx, makeTestPlayer(owner, uniqueName("gone"))))
	require.NoError(t, repo.Delete(ctx, owner))

	_, err := repo.Get(ctx, owner)
	assert.ErrorIs(t, err, postgres.ErrPlayerNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, owner), postgres.ErrPlayerNotFound)
}

func TestPlayerRepository_LoadAllIncludesUpserted(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	owner := uniqueOwner()
	require.NoError(t, repo.Upsert(ctx, makeTestPlayer(owner, uniqueName("all"))))

	players, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	found := false
	for _, p := range players {
		if p.OwnerID == owner {
			found = true
		}
	}
	assert.True(t, found)
}
