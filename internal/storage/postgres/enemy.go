package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duskfall/adventure/internal/game/encounter"
)

// EnemyRepository loads the encounter content table.
type EnemyRepository struct {
	db *pgxpool.Pool
}

// NewEnemyRepository creates an EnemyRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEnemyRepository(db *pgxpool.Pool) *EnemyRepository {
	return &EnemyRepository{db: db}
}

// LoadAll returns every enemy species, ordered by ID.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *EnemyRepository) LoadAll(ctx context.Context) ([]*encounter.Enemy, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, map_ids, tier FROM enemies ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing enemies: %w", err)
	}
	defer rows.Close()

	enemies := make([]*encounter.Enemy, 0)
	for rows.Next() {
		var e encounter.Enemy
		var mapIDs []int32
		if err := rows.Scan(&e.ID, &e.Name, &mapIDs, &e.Tier); err != nil {
			return nil, fmt.Errorf("scanning enemy row: %w", err)
		}
		e.MapIDs = make([]int, len(mapIDs))
		for i, id := range mapIDs {
			e.MapIDs[i] = int(id)
		}
		enemies = append(enemies, &e)
	}
	return enemies, rows.Err()
}

// Upsert inserts or updates one enemy species, for the content importer.
func (r *EnemyRepository) Upsert(ctx context.Context, e *encounter.Enemy) error {
	mapIDs := make([]int32, len(e.MapIDs))
	for i, id := range e.MapIDs {
		mapIDs[i] = int32(id)
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO enemies (id, name, map_ids, tier)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			map_ids = EXCLUDED.map_ids,
			tier = EXCLUDED.tier`,
		e.ID, e.Name, mapIDs, e.Tier,
	)
	if err != nil {
		return fmt.Errorf("upserting enemy: %w", err)
	}
	return nil
}
