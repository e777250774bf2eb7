// Package service is the command-level surface of the game: each method is
// one player-issued action, reconciling any finished timers before acting.
// A chat transport calls into this package and supplies the prompting
// bridge for battles.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/duskfall/adventure/internal/game/atlas"
	"github.com/duskfall/adventure/internal/game/battle"
	"github.com/duskfall/adventure/internal/game/encounter"
	"github.com/duskfall/adventure/internal/game/player"
)

// duelHP is each side's hit points in a duel.
const duelHP = 50

// Source produces random numbers. Satisfied by math/rand.Rand.
type Source interface {
	Intn(n int) int
}

// Service dispatches player commands to the game subsystems.
type Service struct {
	players    *player.Manager
	encounters *encounter.System
	battles    *battle.Registry
	ignored    *player.IgnoreList
	rand       Source
	logger     *zap.Logger

	moveTimeout      time.Duration
	surrenderTimeout time.Duration
}

// New creates the command service.
//
// Precondition: all arguments must be non-nil; timeouts must be positive.
func New(players *player.Manager, encounters *encounter.System, battles *battle.Registry,
	ignored *player.IgnoreList, rand Source, moveTimeout, surrenderTimeout time.Duration,
	logger *zap.Logger) *Service {
	return &Service{
		players:          players,
		encounters:       encounters,
		battles:          battles,
		ignored:          ignored,
		rand:             rand,
		logger:           logger,
		moveTimeout:      moveTimeout,
		surrenderTimeout: surrenderTimeout,
	}
}

// Players exposes the account-level operations (create, delete, rename,
// give, daily, leaderboards).
func (s *Service) Players() *player.Manager { return s.players }

// Ignored exposes the channel/guild ignore list the transport consults
// before dispatching commands.
func (s *Service) Ignored() *player.IgnoreList { return s.ignored }

// reconciled looks up the acting player and settles any finished action
// first, as every command must.
func (s *Service) reconciled(ctx context.Context, userID int64) (*player.Player, []player.Event, error) {
	p, err := s.players.Get(userID)
	if err != nil {
		return nil, nil, err
	}
	events, err := s.players.Actions().Reconcile(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	return p, events, nil
}

// Travel starts a journey to an adjacent node. The returned events are any
// outcomes of settling a previously finished action.
func (s *Service) Travel(ctx context.Context, userID int64, dest atlas.Ref) ([]player.Event, error) {
	p, events, err := s.reconciled(ctx, userID)
	if err != nil {
		return events, err
	}
	return events, s.players.Actions().Travel(ctx, p, dest)
}

// QuickTravel relocates the player instantly along an explored path,
// returning the price paid.
func (s *Service) QuickTravel(ctx context.Context, userID int64, dest atlas.Ref) (int, []player.Event, error) {
	p, events, err := s.reconciled(ctx, userID)
	if err != nil {
		return 0, events, err
	}
	price, err := s.players.Actions().QuickTravel(ctx, p, dest)
	return price, events, err
}

// Explore starts exploring the player's current node.
func (s *Service) Explore(ctx context.Context, userID int64) ([]player.Event, error) {
	p, events, err := s.reconciled(ctx, userID)
	if err != nil {
		return events, err
	}
	return events, s.players.Actions().Explore(ctx, p)
}

// SpeedUp charges the player to finish the current action early, returning
// the cost. An action that already finished is settled instead and the call
// fails with NotBusyError.
func (s *Service) SpeedUp(ctx context.Context, userID int64) (int, []player.Event, error) {
	p, events, err := s.reconciled(ctx, userID)
	if err != nil {
		return 0, events, err
	}
	cost, err := s.players.Actions().SpeedUp(ctx, p)
	return cost, events, err
}

// Encounter rolls for a random enemy on the player's current map and
// resolves the fight when one shows up. A nil outcome means nothing was
// encountered.
//
// Precondition: the player must be idle.
func (s *Service) Encounter(ctx context.Context, userID int64, capture bool) (*encounter.Outcome, []player.Event, error) {
	p, events, err := s.reconciled(ctx, userID)
	if err != nil {
		return nil, events, err
	}
	if status, remaining := s.players.Actions().Clock().Busy(ctx, userID); status != player.StatusIdle {
		return nil, events, &player.BusyError{Name: p.Name, Action: status, Remaining: remaining}
	}
	if !s.encounters.Roll(p) {
		return nil, events, nil
	}
	enemy, err := s.encounters.Pick(p)
	if err != nil {
		return nil, events, err
	}
	out := s.encounters.Resolve(p, enemy, capture)
	return &out, events, nil
}

// Fight runs a demon battle between two players. The prompter bridges move
// selection to whatever transport hosts the two humans. The winner's player
// receives the flat victory reward.
//
// Precondition: both demons must carry distinct owner IDs matching existing
// players, and neither owner may already be in a battle.
func (s *Service) Fight(ctx context.Context, a, b *battle.Demon, prompter battle.Prompter) (*battle.Result, error) {
	fight := battle.New(a, b, prompter, s.logger,
		battle.WithMoveTimeout(s.moveTimeout),
		battle.WithSurrenderTimeout(s.surrenderTimeout))
	if err := s.battles.Register(fight); err != nil {
		return nil, err
	}
	defer s.battles.Remove(fight.ID)

	result, err := fight.Run(ctx)
	if err != nil {
		return nil, err
	}
	s.rewardWinner(result.Winner)
	return result, nil
}

// Duel runs the simplified level-weighted fight between two players.
func (s *Service) Duel(ctx context.Context, aID, bID int64) (*battle.DuelResult, error) {
	a, err := s.players.Get(aID)
	if err != nil {
		return nil, err
	}
	b, err := s.players.Get(bID)
	if err != nil {
		return nil, err
	}

	duel := battle.NewDuel(
		&battle.Duelist{Name: a.Name, OwnerID: a.OwnerID, Level: a.Level() + 1, HP: duelHP},
		&battle.Duelist{Name: b.Name, OwnerID: b.OwnerID, Level: b.Level() + 1, HP: duelHP},
		s.rand, s.logger)
	result, err := duel.Run(ctx)
	if err != nil {
		return nil, err
	}
	s.rewardDuelWinner(result.Winner)
	return result, nil
}

// InBattle reports whether a user is currently fighting.
func (s *Service) InBattle(userID int64) bool {
	_, ok := s.battles.ByUser(userID)
	return ok
}

func (s *Service) rewardWinner(winner *battle.Demon) {
	if winner == nil {
		return
	}
	s.payout(winner.OwnerID)
}

func (s *Service) rewardDuelWinner(winner *battle.Duelist) {
	if winner == nil {
		return
	}
	s.payout(winner.OwnerID)
}

func (s *Service) payout(ownerID int64) {
	p, err := s.players.Get(ownerID)
	if err != nil {
		// The winner may not own a player (an NPC-owned demon). Nothing to
		// credit.
		return
	}
	p.AddExp(battle.VictoryExp)
	p.AddGold(battle.VictoryGold)
	s.logger.Info("victory reward paid",
		zap.Int64("owner", ownerID),
		zap.Int("exp", battle.VictoryExp),
		zap.Int("gold", battle.VictoryGold))
}
