package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskfall/adventure/internal/game/encounter"
	"github.com/duskfall/adventure/internal/storage/postgres"
	"github.com/duskfall/adventure/internal/testutil"
)

func TestEnemyRepository_UpsertAndLoadAll(t *testing.T) {
	repo := postgres.NewEnemyRepository(testutil.NewPool(t))
	ctx := context.Background()

	id := int(uniqueOwner() % 1_000_000)
	e := &encounter.Enemy{
		ID:     id,
		Name:   uniqueName("slime"),
		MapIDs: []int{1, 2, 7},
		Tier:   3,
	}
	require.NoError(t, repo.Upsert(ctx, e))

	enemies, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	var got *encounter.Enemy
	for _, candidate := range enemies {
		if candidate.ID == id {
			got = candidate
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, e.Name, got.Name)
	assert.Equal(t, []int{1, 2, 7}, got.MapIDs)
	assert.Equal(t, 3, got.Tier)
}

func TestEnemyRepository_UpsertOverwrites(t *testing.T) {
	repo := postgres.NewEnemyRepository(testutil.NewPool(t))
	ctx := context.Background()

	id := int(uniqueOwner() % 1_000_000)
	e := &encounter.Enemy{ID: id, Name: uniqueName("oni"), MapIDs: []int{2}, Tier: 5}
	require.NoError(t, repo.Upsert(ctx, e))

	e.MapIDs = []int{2, 3}
	e.Tier = 6
	require.NoError(t, repo.Upsert(ctx, e))

	enemies, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	for _, got := range enemies {
		if got.ID == id {
			assert.Equal(t, []int{2, 3}, got.MapIDs)
			assert.Equal(t, 6, got.Tier)
			return
		}
	}
	t.Fatalf("enemy %d not found after upsert", id)
}
