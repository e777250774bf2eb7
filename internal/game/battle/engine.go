package battle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Default prompt windows. A move prompt left unanswered is an implicit
// surrender; an unanswered surrender confirmation counts as confirmed.
const (
	DefaultMoveTimeout      = 120 * time.Second
	DefaultSurrenderTimeout = 30 * time.Second
)

// Flat reward granted to the winning side's owner, shared by demon battles
// and duels.
const (
	VictoryExp  = 50
	VictoryGold = 100
)

// ErrUnresolved flags a round that claimed to finish the battle with no
// faint and no surrender. It indicates a bug, not a game state.
var ErrUnresolved = errors.New("battle finished without a faint or surrender")

// Round records one completed exchange.
type Round struct {
	Number int
	// Hits are both sides' resolved moves, in A-then-B order. Empty when the
	// round ended in surrender.
	Hits []Hit
}

// Result is the terminal outcome of a battle.
type Result struct {
	Winner *Demon
	Loser  *Demon
	// Draw is set when both demons faint in the same exchange or both sides
	// surrender together. Winner and Loser are nil.
	Draw bool
	// Surrendered is set when the battle ended by concession rather than a
	// faint.
	Surrendered bool
	Rounds      []Round
}

// Battle is one fight between two demons. Run drives it to completion.
type Battle struct {
	ID uuid.UUID
	A  *Demon
	B  *Demon

	prompter         Prompter
	moveTimeout      time.Duration
	surrenderTimeout time.Duration
	logger           *zap.Logger
}

// Option adjusts battle construction.
type Option func(*Battle)

// WithMoveTimeout overrides the move prompt window.
func WithMoveTimeout(d time.Duration) Option {
	return func(b *Battle) { b.moveTimeout = d }
}

// WithSurrenderTimeout overrides the surrender confirmation window.
func WithSurrenderTimeout(d time.Duration) Option {
	return func(b *Battle) { b.surrenderTimeout = d }
}

// New creates a battle between two demons.
//
// Precondition: a and b must be non-nil with positive HP and at least one
// move each; prompter and logger must be non-nil.
func New(a, b *Demon, prompter Prompter, logger *zap.Logger, opts ...Option) *Battle {
	battle := &Battle{
		ID:               uuid.New(),
		A:                a,
		B:                b,
		prompter:         prompter,
		moveTimeout:      DefaultMoveTimeout,
		surrenderTimeout: DefaultSurrenderTimeout,
		logger:           logger,
	}
	for _, opt := range opts {
		opt(battle)
	}
	return battle
}

// turn is one side's resolved intent for a round.
type turn struct {
	move        Move
	surrendered bool
}

// promptTurn asks one owner for a move until it gets a usable answer. A
// timed-out move prompt surrenders. An explicit decline opens a surrender
// confirmation; an unanswered confirmation counts as confirmed, a refused
// one re-opens the move prompt.
func (b *Battle) promptTurn(ctx context.Context, d *Demon) (turn, error) {
	options := d.MoveNames()
	for {
		if err := ctx.Err(); err != nil {
			return turn{}, err
		}
		dec := b.prompter.AskOption(ctx, d.OwnerID, d.Name+": choose a move", options, b.moveTimeout)
		switch dec.Kind {
		case Chose:
			if dec.Choice < 0 || dec.Choice >= len(d.Moves) {
				continue
			}
			return turn{move: d.Moves[dec.Choice]}, nil
		case TimedOut:
			return turn{surrendered: true}, nil
		case Declined:
			conf := b.prompter.Confirm(ctx, d.OwnerID, d.Name+": surrender?", b.surrenderTimeout)
			if conf.Kind == TimedOut || (conf.Kind == Chose && conf.Choice == 0) {
				return turn{surrendered: true}, nil
			}
		}
	}
}

// Run drives the battle to completion: both owners are prompted
// concurrently each round, surrender short-circuits the exchange, and
// otherwise both moves land simultaneously off the same round's choices.
//
// Postcondition: the returned Result has a Winner unless Draw is set; a
// surrender skips the damage step of its round entirely.
func (b *Battle) Run(ctx context.Context) (*Result, error) {
	result := &Result{}
	for number := 1; ; number++ {
		var turnA, turnB turn
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			turnA, err = b.promptTurn(gctx, b.A)
			return err
		})
		g.Go(func() error {
			var err error
			turnB, err = b.promptTurn(gctx, b.B)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if turnA.surrendered || turnB.surrendered {
			result.Surrendered = true
			result.Rounds = append(result.Rounds, Round{Number: number})
			switch {
			case turnA.surrendered && turnB.surrendered:
				result.Draw = true
			case turnA.surrendered:
				result.Winner, result.Loser = b.B, b.A
			default:
				result.Winner, result.Loser = b.A, b.B
			}
			b.logger.Info("battle ended by surrender",
				zap.String("battle", b.ID.String()),
				zap.Int("round", number))
			return result, nil
		}

		// Both hits resolve off pre-exchange state, then land together.
		hitA := ResolveHit(b.A, b.B, turnA.move)
		hitB := ResolveHit(b.B, b.A, turnB.move)
		hitA.Apply(b.A, b.B)
		hitB.Apply(b.B, b.A)
		result.Rounds = append(result.Rounds, Round{Number: number, Hits: []Hit{hitA, hitB}})

		if b.A.Fainted() || b.B.Fainted() {
			if err := b.conclude(result); err != nil {
				return nil, err
			}
			b.logger.Info("battle ended by faint",
				zap.String("battle", b.ID.String()),
				zap.Int("rounds", number))
			return result, nil
		}
	}
}

// conclude derives the terminal outcome from HP state. Reaching it without
// any faint is an engine bug and is reported as such.
func (b *Battle) conclude(result *Result) error {
	switch {
	case b.A.Fainted() && b.B.Fainted():
		result.Draw = true
	case b.A.Fainted():
		result.Winner, result.Loser = b.B, b.A
	case b.B.Fainted():
		result.Winner, result.Loser = b.A, b.B
	default:
		return ErrUnresolved
	}
	return nil
}
