package encounter

import (
	"math"

	"go.uber.org/zap"

	"github.com/duskfall/adventure/internal/game/player"
)

// defeatPenaltyRate is the gold lost per enemy tier on defeat.
const defeatPenaltyRate = 10

// Source produces random numbers. Satisfied by math/rand.Rand.
type Source interface {
	Intn(n int) int
}

// Outcome is how a resolved encounter affected the player.
type Outcome struct {
	Enemy   *Enemy
	Victory bool
	// Exp and Gold are the victory rewards. Zero on defeat or capture.
	Exp  int
	Gold int
	// Captured is set when a victorious capture attempt recorded the enemy
	// in the compendium instead of paying out.
	Captured bool
	// Penalty is the gold lost on defeat, bounded by the player's balance.
	Penalty int
	// RelocatedTo is the node the player was sent to on defeat.
	RelocatedTo int
}

// System rolls and resolves encounters over a loaded enemy table.
type System struct {
	table     *Table
	rand      Source
	homeMapID int
	logger    *zap.Logger
}

// NewSystem creates an encounter system.
//
// Precondition: all arguments must be non-nil.
func NewSystem(table *Table, rand Source, homeMapID int, logger *zap.Logger) *System {
	return &System{
		table:     table,
		rand:      rand,
		homeMapID: homeMapID,
		logger:    logger,
	}
}

// Chance returns the encounter probability in percent for a player on a
// map: 100 + (species count - max tier) - player level, clamped to [0, 100].
// Stronger players on thin maps see fewer encounters.
func (s *System) Chance(mapID, level int) int {
	chance := 100 + (s.table.Count(mapID) - s.table.MaxTier(mapID)) - level
	if chance < 0 {
		return 0
	}
	if chance > 100 {
		return 100
	}
	return chance
}

// Roll reports whether an encounter fires for the player on their current
// map.
func (s *System) Roll(p *player.Player) bool {
	return s.rand.Intn(100) < s.Chance(p.MapID, p.Level())
}

// Pick selects a random enemy from the player's current map.
//
// Postcondition: returns ErrNoEnemies when the map has no registered
// enemies; callers that rolled an encounter first should treat that as a
// content bug, not bad luck.
func (s *System) Pick(p *player.Player) (*Enemy, error) {
	enemies := s.table.OnMap(p.MapID)
	if len(enemies) == 0 {
		s.logger.Error("encounter rolled on an empty map",
			zap.Int("map", p.MapID),
			zap.Int64("owner", p.OwnerID))
		return nil, ErrNoEnemies
	}
	return enemies[s.rand.Intn(len(enemies))], nil
}

// defeatChance returns the player's victory probability in percent:
// tanh((level² / tier²) / 4.6) × 100. Approaches 100 as the player outgrows
// the enemy's tier.
func defeatChance(level, tier int) int {
	ratio := float64(level*level) / float64(tier*tier)
	return int(math.Tanh(ratio/4.6) * 100)
}

// Resolve runs a fight between the player and the enemy and applies the
// result. A capture attempt on victory records the enemy in the compendium
// instead of paying rewards. Defeat relocates the player to the home node
// and charges a tier-scaled penalty, never below a zero balance.
func (s *System) Resolve(p *player.Player, enemy *Enemy, capture bool) Outcome {
	out := Outcome{Enemy: enemy}
	if s.rand.Intn(100)+1 < defeatChance(p.Level(), enemy.Tier) {
		out.Victory = true
		if capture {
			out.Captured = true
			p.Compendium.Record(enemy.ID)
		} else {
			cubed := enemy.Tier * enemy.Tier * enemy.Tier
			out.Exp = s.randRange(cubed/8, cubed/4) + 1
			out.Gold = s.randRange(enemy.Tier*2, enemy.Tier*6)
			p.AddExp(out.Exp)
			p.AddGold(out.Gold)
		}
		s.logger.Info("encounter won",
			zap.Int64("owner", p.OwnerID),
			zap.String("enemy", enemy.Name),
			zap.Bool("captured", out.Captured))
		return out
	}

	penalty := enemy.Tier * defeatPenaltyRate
	if penalty > p.Gold {
		penalty = p.Gold
	}
	p.SpendGold(penalty)
	p.MapID = s.homeMapID
	out.Penalty = penalty
	out.RelocatedTo = s.homeMapID
	s.logger.Info("encounter lost",
		zap.Int64("owner", p.OwnerID),
		zap.String("enemy", enemy.Name),
		zap.Int("penalty", penalty))
	return out
}

// randRange returns a uniform value in [low, high]. Degenerate ranges
// collapse to low.
func (s *System) randRange(low, high int) int {
	if high <= low {
		return low
	}
	return low + s.rand.Intn(high-low+1)
}
