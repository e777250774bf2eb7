package battle

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Duels skip the demon move system entirely. Each exchange picks a winner by
// a weighted roll proportional to the sides' levels, with a shared "nothing
// happens" bucket, and the roll winner lands a fixed blow.

// nothingWeight is the shared dead-roll bucket added to both levels.
const nothingWeight = 20

// duelBlow is the flat damage a won exchange deals.
const duelBlow = 10

// Duelist is one side of a duel.
type Duelist struct {
	Name    string
	OwnerID int64
	Level   int
	HP      int
}

// Source produces random numbers. Satisfied by math/rand.Rand.
type Source interface {
	Intn(n int) int
}

// DuelExchange records one roll of a duel.
type DuelExchange struct {
	Number int
	// Striker is the side that landed this exchange's blow, empty when the
	// roll fell in the nothing-happens bucket.
	Striker string
	Damage  int
}

// DuelResult is the terminal outcome of a duel.
type DuelResult struct {
	Winner    *Duelist
	Loser     *Duelist
	Exchanges []DuelExchange
}

// Duel is a simplified fight decided by weighted rolls.
type Duel struct {
	ID     uuid.UUID
	A      *Duelist
	B      *Duelist
	rand   Source
	logger *zap.Logger
}

// NewDuel creates a duel between two sides.
//
// Precondition: a and b must be non-nil with positive HP and level >= 1;
// rand and logger must be non-nil.
func NewDuel(a, b *Duelist, rand Source, logger *zap.Logger) *Duel {
	return &Duel{
		ID:     uuid.New(),
		A:      a,
		B:      b,
		rand:   rand,
		logger: logger,
	}
}

// Run rolls exchanges until one side's HP reaches zero.
//
// Postcondition: the returned result always has a Winner; a duel cannot
// draw because only one side is struck per exchange.
func (d *Duel) Run(ctx context.Context) (*DuelResult, error) {
	result := &DuelResult{}
	for number := 1; ; number++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		exchange := DuelExchange{Number: number}
		roll := d.rand.Intn(d.A.Level + d.B.Level + nothingWeight)
		switch {
		case roll < d.A.Level:
			exchange.Striker = d.A.Name
			exchange.Damage = duelBlow
			d.B.HP -= duelBlow
		case roll < d.A.Level+d.B.Level:
			exchange.Striker = d.B.Name
			exchange.Damage = duelBlow
			d.A.HP -= duelBlow
		}
		result.Exchanges = append(result.Exchanges, exchange)

		switch {
		case d.A.HP <= 0:
			result.Winner, result.Loser = d.B, d.A
		case d.B.HP <= 0:
			result.Winner, result.Loser = d.A, d.B
		default:
			continue
		}
		d.logger.Info("duel finished",
			zap.String("duel", d.ID.String()),
			zap.String("winner", result.Winner.Name),
			zap.Int("exchanges", number))
		return result, nil
	}
}
