package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duskfall/adventure/internal/game/player"
)

// ErrPlayerNotFound is returned when a player lookup yields no results.
var ErrPlayerNotFound = errors.New("player not found")

// ErrPlayerNameTaken is returned when persisting a player whose name is
// already used by another owner.
var ErrPlayerNameTaken = errors.New("player name already taken")

// PlayerRepository provides player persistence operations. It satisfies
// player.Repository.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a PlayerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = `owner_id, name, map_id, next_map_id, exp, gold, explored, compendium, created_at`

// LoadAll returns every persisted player.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *PlayerRepository) LoadAll(ctx context.Context) ([]*player.Player, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+playerColumns+` FROM players ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	players := make([]*player.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Get retrieves a player by owner ID.
//
// Postcondition: Returns the player or ErrPlayerNotFound.
func (r *PlayerRepository) Get(ctx context.Context, ownerID int64) (*player.Player, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE owner_id = $1`, ownerID)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

// Upsert inserts or updates a player keyed by owner ID.
//
// Postcondition: The row matches the in-memory player, or
// ErrPlayerNameTaken when the name collides with another owner's.
func (r *PlayerRepository) Upsert(ctx context.Context, p *player.Player) error {
	explored := make([]int32, 0, len(p.Explored))
	for _, id := range p.ExploredIDs() {
		explored = append(explored, int32(id))
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO players (owner_id, name, map_id, next_map_id, exp, gold, explored, compendium, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (owner_id) DO UPDATE SET
			name = EXCLUDED.name,
			map_id = EXCLUDED.map_id,
			next_map_id = EXCLUDED.next_map_id,
			exp = EXCLUDED.exp,
			gold = EXCLUDED.gold,
			explored = EXCLUDED.explored,
			compendium = EXCLUDED.compendium,
			updated_at = NOW()`,
		p.OwnerID, p.Name, p.MapID, p.NextMapID, p.Exp, p.Gold,
		explored, p.Compendium.Bytes(), p.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrPlayerNameTaken
		}
		return fmt.Errorf("upserting player: %w", err)
	}
	return nil
}

// Delete removes a player by owner ID.
//
// Postcondition: Returns nil on success, ErrPlayerNotFound if no row was
// deleted.
func (r *PlayerRepository) Delete(ctx context.Context, ownerID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM players WHERE owner_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func scanPlayer(row pgx.Row) (*player.Player, error) {
	var p player.Player
	var explored []int32
	var compendium []byte
	if err := row.Scan(
		&p.OwnerID, &p.Name, &p.MapID, &p.NextMapID, &p.Exp, &p.Gold,
		&explored, &compendium, &p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning player row: %w", err)
	}

	p.Explored = make(map[int]bool, len(explored))
	for _, id := range explored {
		p.Explored[int(id)] = true
	}
	p.Compendium = player.CompendiumFromBytes(compendium)
	p.SetLevelThreshold(p.Level() + 1)
	return &p, nil
}
