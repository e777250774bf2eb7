// Package player provides the player model, the travel/explore action state
// machine, and the manager that owns the in-memory player registry.
package player

import (
	"math"
	"time"
)

// MaxNameLength bounds player display names.
const MaxNameLength = 32

// MaxLevel caps the level derived from experience.
const MaxLevel = 99

// NoNextMap marks the absence of a pending travel destination.
const NoNextMap = -1

// Status is the player's current long-running action. A player is always in
// exactly one status; the timer store is the source of truth for when
// Travelling or Exploring end.
type Status int

const (
	StatusIdle Status = iota
	StatusTravelling
	StatusExploring
)

// String returns a human-readable status label.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusTravelling:
		return "travelling"
	case StatusExploring:
		return "exploring"
	default:
		return "unknown"
	}
}

// Player is a single adventurer owned by an external chat identity.
// Fields are mutated only by the manager and the action state machine;
// the periodic flush persists them.
type Player struct {
	// OwnerID is the external chat-platform user ID owning this player.
	OwnerID int64
	// Name is the display name, at most MaxNameLength characters.
	Name string
	// MapID is the current map node.
	MapID int
	// NextMapID is the pending destination while travelling; -1 when none.
	// The timer store's next-map key is authoritative across restarts.
	NextMapID int
	// Exp is the accumulated experience. Monotonically non-decreasing.
	Exp int
	// Gold is the currency balance. Never negative.
	Gold int
	// CreatedAt is when the player was created.
	CreatedAt time.Time
	// Explored is the set of map node IDs this player has explored.
	Explored map[int]bool
	// Compendium records which enemies have been captured.
	Compendium Compendium
	// Status is the current action state, reconciled lazily from the store.
	Status Status

	// nextLevel is the threshold for the next level-up announcement.
	nextLevel int
}

// New creates a fresh player at the given home map node.
//
// Precondition: name must be non-empty and at most MaxNameLength characters.
// Postcondition: The player is idle, at homeMapID, with the home node explored.
func New(ownerID int64, name string, homeMapID int, createdAt time.Time) *Player {
	p := &Player{
		OwnerID:    ownerID,
		Name:       name,
		MapID:      homeMapID,
		NextMapID:  NoNextMap,
		CreatedAt:  createdAt,
		Explored:   map[int]bool{homeMapID: true},
		Compendium: NewCompendium(DefaultCompendiumSize),
	}
	p.nextLevel = p.Level() + 1
	return p
}

// Level derives the player's level from experience: floor(exp^0.334),
// capped at MaxLevel.
//
// Postcondition: Returns a value in [0, MaxLevel].
func (p *Player) Level() int {
	lvl := int(math.Floor(math.Pow(float64(p.Exp), 0.334)))
	if lvl > MaxLevel {
		return MaxLevel
	}
	return lvl
}

// ExpToNextLevel returns how much experience is missing until the next
// level. Level thresholds grow roughly cubically.
//
// Postcondition: Returns >= 0; returns 0 at MaxLevel.
func (p *Player) ExpToNextLevel() int {
	lvl := p.Level()
	if lvl >= MaxLevel {
		return 0
	}
	next := lvl + 1
	need := next * next * next
	if need <= p.Exp {
		return 0
	}
	return need - p.Exp
}

// AddExp increases experience by n. Negative amounts are ignored to keep
// experience monotonic.
func (p *Player) AddExp(n int) {
	if n > 0 {
		p.Exp += n
	}
}

// AdvanceLevel reports whether the player has crossed the next level-up
// threshold and bumps it when so. Checked on every reconciliation.
//
// Postcondition: Returns true at most once per threshold crossing.
func (p *Player) AdvanceLevel() bool {
	if p.Level() >= p.nextLevel {
		p.nextLevel = p.Level() + 1
		return true
	}
	return false
}

// SetLevelThreshold restores the level-up threshold from persisted state.
// Used when loading players at startup so no bogus level-up fires for
// experience gained before the restart.
func (p *Player) SetLevelThreshold(next int) {
	p.nextLevel = next
}

// HasExplored reports whether the player has explored the given map node.
func (p *Player) HasExplored(mapID int) bool {
	return p.Explored[mapID]
}

// MarkExplored adds a map node to the explored set.
func (p *Player) MarkExplored(mapID int) {
	if p.Explored == nil {
		p.Explored = make(map[int]bool)
	}
	p.Explored[mapID] = true
}

// ExploredIDs returns the explored node IDs in unspecified order, for
// persistence.
func (p *Player) ExploredIDs() []int {
	ids := make([]int, 0, len(p.Explored))
	for id := range p.Explored {
		ids = append(ids, id)
	}
	return ids
}

// SpendGold deducts amount from the balance.
//
// Precondition: amount must be >= 0.
// Postcondition: Returns false and leaves the balance untouched when the
// player cannot afford it; the balance never goes negative.
func (p *Player) SpendGold(amount int) bool {
	if amount < 0 || amount > p.Gold {
		return false
	}
	p.Gold -= amount
	return true
}

// AddGold increases the balance. Negative amounts are ignored.
func (p *Player) AddGold(amount int) {
	if amount > 0 {
		p.Gold += amount
	}
}
