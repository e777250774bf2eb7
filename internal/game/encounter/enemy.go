// Package encounter rolls random enemy fights during exploration: whether
// one happens, which enemy shows up, and how it resolves.
package encounter

import "errors"

// ErrNoEnemies reports a map that rolled an encounter but has no enemies
// registered. It indicates a content gap, not a game state.
var ErrNoEnemies = errors.New("no enemies registered for this map")

// Enemy is one encounterable species loaded from content.
type Enemy struct {
	// ID is the stable content ID, also the enemy's compendium bit.
	ID   int
	Name string
	// MapIDs are the map nodes this enemy appears on.
	MapIDs []int
	// Tier scales difficulty and rewards. At least 1.
	Tier int
}

// Table indexes enemies by the maps they appear on.
type Table struct {
	byMap map[int][]*Enemy
}

// NewTable builds the per-map index.
func NewTable(enemies []*Enemy) *Table {
	t := &Table{byMap: make(map[int][]*Enemy)}
	for _, e := range enemies {
		for _, mapID := range e.MapIDs {
			t.byMap[mapID] = append(t.byMap[mapID], e)
		}
	}
	return t
}

// OnMap returns the enemies registered for a map node.
func (t *Table) OnMap(mapID int) []*Enemy {
	return t.byMap[mapID]
}

// Count returns how many enemy species appear on a map node.
func (t *Table) Count(mapID int) int {
	return len(t.byMap[mapID])
}

// MaxTier returns the highest tier present on a map node, 0 when empty.
func (t *Table) MaxTier(mapID int) int {
	max := 0
	for _, e := range t.byMap[mapID] {
		if e.Tier > max {
			max = e.Tier
		}
	}
	return max
}
