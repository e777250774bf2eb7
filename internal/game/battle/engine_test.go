package battle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duskfall/adventure/internal/game/battle"
)

// scriptPrompter feeds pre-scripted decisions per user. An exhausted script
// times out, which the engine reads as surrender.
type scriptPrompter struct {
	mu       sync.Mutex
	moves    map[int64][]battle.Decision
	confirms map[int64][]battle.Decision
}

func newScript() *scriptPrompter {
	return &scriptPrompter{
		moves:    make(map[int64][]battle.Decision),
		confirms: make(map[int64][]battle.Decision),
	}
}

func (s *scriptPrompter) queueMoves(userID int64, decisions ...battle.Decision) {
	s.moves[userID] = append(s.moves[userID], decisions...)
}

func (s *scriptPrompter) queueConfirms(userID int64, decisions ...battle.Decision) {
	s.confirms[userID] = append(s.confirms[userID], decisions...)
}

func (s *scriptPrompter) AskOption(_ context.Context, userID int64, _ string, _ []string, _ time.Duration) battle.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.moves[userID]
	if len(queue) == 0 {
		return battle.Timeout
	}
	s.moves[userID] = queue[1:]
	return queue[0]
}

func (s *scriptPrompter) Confirm(_ context.Context, userID int64, _ string, _ time.Duration) battle.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.confirms[userID]
	if len(queue) == 0 {
		return battle.Timeout
	}
	s.confirms[userID] = queue[1:]
	return queue[0]
}

func fireDemon(name string, owner int64, hp, magic int) *battle.Demon {
	return &battle.Demon{
		Name:    name,
		OwnerID: owner,
		HP:      hp,
		MaxHP:   hp,
		Stats:   battle.Stats{Magic: magic},
		Moves: []battle.Move{
			{Name: "Agi", Element: battle.Fire, Severity: battle.Medium},
			{Name: "Agilao", Element: battle.Fire, Severity: battle.Heavy},
		},
	}
}

func TestRun_FaintDecidesWinner(t *testing.T) {
	a := fireDemon("Pyro Jack", 1, 200, 100)
	b := fireDemon("Slime", 2, 80, 10)
	script := newScript()
	script.queueMoves(1, battle.Choose(0))
	script.queueMoves(2, battle.Choose(0))

	fight := battle.New(a, b, script, zap.NewNop())
	result, err := fight.Run(context.Background())
	require.NoError(t, err)

	assert.Same(t, a, result.Winner)
	assert.Same(t, b, result.Loser)
	assert.False(t, result.Draw)
	assert.False(t, result.Surrendered)
	require.Len(t, result.Rounds, 1)
	require.Len(t, result.Rounds[0].Hits, 2)
	assert.Equal(t, 0, b.HP)
	assert.Equal(t, 190, a.HP, "both hits land even when the defender faints")
}

func TestRun_BothFaintIsDraw(t *testing.T) {
	a := fireDemon("Pyro Jack", 1, 50, 100)
	b := fireDemon("Hee-Ho", 2, 50, 100)
	script := newScript()
	script.queueMoves(1, battle.Choose(0))
	script.queueMoves(2, battle.Choose(0))

	result, err := battle.New(a, b, script, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Draw)
	assert.Nil(t, result.Winner)
	assert.True(t, a.Fainted())
	assert.True(t, b.Fainted())
}

func TestRun_ConfirmedSurrenderSkipsDamage(t *testing.T) {
	a := fireDemon("Pyro Jack", 1, 200, 100)
	b := fireDemon("Slime", 2, 80, 10)
	script := newScript()
	script.queueMoves(1, battle.Decline)
	script.queueConfirms(1, battle.Choose(0))
	script.queueMoves(2, battle.Choose(0))

	result, err := battle.New(a, b, script, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Surrendered)
	assert.Same(t, b, result.Winner)
	require.Len(t, result.Rounds, 1)
	assert.Empty(t, result.Rounds[0].Hits, "surrender must skip the damage step")
	assert.Equal(t, 200, a.HP)
	assert.Equal(t, 80, b.HP)
}

func TestRun_MoveTimeoutIsImplicitSurrender(t *testing.T) {
	a := fireDemon("Pyro Jack", 1, 200, 100)
	b := fireDemon("Slime", 2, 80, 10)
	script := newScript()
	// No script for user 1: their move prompt times out.
	script.queueMoves(2, battle.Choose(0))

	result, err := battle.New(a, b, script, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Surrendered)
	assert.Same(t, b, result.Winner)
}

func TestRun_UnansweredSurrenderConfirmCounts(t *testing.T) {
	a := fireDemon("Pyro Jack", 1, 200, 100)
	b := fireDemon("Slime", 2, 80, 10)
	script := newScript()
	script.queueMoves(1, battle.Decline)
	// No confirm script: the confirmation times out, which confirms.
	script.queueMoves(2, battle.Choose(0))

	result, err := battle.New(a, b, script, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Surrendered)
	assert.Same(t, b, result.Winner)
}

func TestRun_RefusedSurrenderReopensMovePrompt(t *testing.T) {
	a := fireDemon("Pyro Jack", 1, 200, 100)
	b := fireDemon("Slime", 2, 80, 10)
	script := newScript()
	script.queueMoves(1, battle.Decline, battle.Choose(1))
	script.queueConfirms(1, battle.Choose(1)) // "no"
	script.queueMoves(2, battle.Choose(0))

	result, err := battle.New(a, b, script, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Surrendered)
	assert.Same(t, a, result.Winner)
}

func TestRun_BothSurrenderIsDraw(t *testing.T) {
	a := fireDemon("Pyro Jack", 1, 200, 100)
	b := fireDemon("Slime", 2, 80, 10)
	script := newScript() // both move prompts time out

	result, err := battle.New(a, b, script, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Surrendered)
	assert.True(t, result.Draw)
	assert.Nil(t, result.Winner)
}

func TestRun_ReflectReportedInRound(t *testing.T) {
	a := fireDemon("Pyro Jack", 1, 200, 100)
	b := fireDemon("Mirror Imp", 2, 300, 10)
	b.Resistances = map[battle.Element]battle.Outcome{battle.Fire: battle.Reflect}
	script := newScript()
	script.queueMoves(1, battle.Choose(0), battle.Choose(0))
	script.queueMoves(2, battle.Choose(0), battle.Choose(0))

	result, err := battle.New(a, b, script, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, result.Rounds)

	reflected := result.Rounds[0].Hits[0]
	assert.Equal(t, battle.Reflect, reflected.Outcome)
	assert.Equal(t, 0, reflected.Damage)
	assert.Greater(t, reflected.Reflected, 0,
		"the reflected portion must be visible to the presentation layer")
}

func TestRun_ContextCancellation(t *testing.T) {
	a := fireDemon("Pyro Jack", 1, 200, 100)
	b := fireDemon("Slime", 2, 80, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := battle.New(a, b, newScript(), zap.NewNop()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
