package player_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duskfall/adventure/internal/game/atlas"
	"github.com/duskfall/adventure/internal/game/player"
	"github.com/duskfall/adventure/internal/storage/redis"
)

// World used throughout: Home(0, safe) - Woods(1) - Deep(2) - Far(3) in a
// line, plus hidden Vault(4) adjacent to Home.
func testWorld(t *testing.T) *atlas.Atlas {
	t.Helper()
	nodes := []*atlas.Node{
		{ID: 0, Name: "Home", Density: 5, Safe: true, Nearby: []int{1, 4}},
		{ID: 1, Name: "Woods", Density: 50, Nearby: []int{0, 2}},
		{ID: 2, Name: "Deep Woods", Density: 400, Nearby: []int{1, 3}},
		{ID: 3, Name: "Far Ridge", Density: 800, Nearby: []int{2}},
		{ID: 4, Name: "Vault", Density: 10, Hidden: true, Nearby: []int{0}},
	}
	return atlas.New(nodes, atlas.DefaultTravelDivisor, zap.NewNop())
}

type rig struct {
	mem     *redis.Memory
	actions *player.Actions
}

func newRig(t *testing.T) *rig {
	t.Helper()
	mem := redis.NewMemory()
	clock := player.NewClock(mem)
	return &rig{
		mem:     mem,
		actions: player.NewActions(testWorld(t), clock, zap.NewNop()),
	}
}

func newIdlePlayer() *player.Player {
	return player.New(42, "Rosa", 0, time.Now().UTC())
}

func TestTravel_HomeToWoods(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()

	require.NoError(t, r.actions.Travel(ctx, p, atlas.ByName("woods")))

	// (5+50)/1234 hours, no discount because Woods is unexplored.
	assert.Equal(t, 160*time.Second, r.actions.Clock().TravelRemaining(ctx, p.OwnerID))
	assert.Equal(t, player.StatusTravelling, p.Status)
	assert.Equal(t, 1, p.NextMapID)
	assert.Equal(t, 0, p.MapID, "position must not move until reconciliation")
}

func TestTravel_KnownRouteDiscount(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MarkExplored(1)

	require.NoError(t, r.actions.Travel(ctx, p, atlas.ByID(1)))
	assert.Equal(t, 40*time.Second, r.actions.Clock().TravelRemaining(ctx, p.OwnerID))
}

func TestTravel_BusyRejectedWithoutMutation(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	require.NoError(t, r.actions.Travel(ctx, p, atlas.ByID(1)))

	err := r.actions.Travel(ctx, p, atlas.ByID(1))
	var busy *player.BusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, player.StatusTravelling, busy.Action)
	assert.Greater(t, busy.Remaining, time.Duration(0))
	assert.Equal(t, 0, p.MapID)
	assert.Equal(t, 1, p.NextMapID)
}

func TestTravel_NotNearby(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()

	err := r.actions.Travel(ctx, p, atlas.ByName("Far Ridge"))
	var notNearby *player.NotNearbyError
	require.ErrorAs(t, err, &notNearby)
	assert.Equal(t, player.StatusIdle, p.Status)
}

func TestTravel_HiddenNodeRejected(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()

	err := r.actions.Travel(ctx, p, atlas.ByName("Vault"))
	var notNearby *player.NotNearbyError
	require.ErrorAs(t, err, &notNearby)
}

func TestTravel_UnknownDestination(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()

	err := r.actions.Travel(ctx, p, atlas.ByName("Atlantis"))
	var unknown *player.UnknownMapError
	require.ErrorAs(t, err, &unknown)
}

func TestReconcile_TravelAwardsOnce(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MapID = 2 // Deep Woods
	require.NoError(t, r.actions.Travel(ctx, p, atlas.ByName("Far Ridge")))

	// Live timer: repeated reconciliation is a no-op.
	for i := 0; i < 3; i++ {
		events, err := r.actions.Reconcile(ctx, p)
		require.NoError(t, err)
		assert.Empty(t, events)
	}
	assert.Equal(t, 2, p.MapID)

	r.mem.Advance(4 * time.Hour)

	events, err := r.actions.Reconcile(ctx, p)
	require.NoError(t, err)

	// (400+800)/1234 hours -> floor(hours*10/3) = 3 exp.
	wantExp := atlas.ActionExp(1200.0 / 1234.0)
	require.NotEmpty(t, events)
	assert.Equal(t, player.EventArrived, events[0].Kind)
	assert.Equal(t, "Far Ridge", events[0].Node.Name)
	assert.Equal(t, wantExp, events[0].Exp)
	assert.Equal(t, 3, p.MapID)
	assert.Equal(t, player.NoNextMap, p.NextMapID)
	assert.Equal(t, wantExp, p.Exp)
	assert.Equal(t, player.StatusIdle, p.Status)

	// Settled: no duplicate award.
	events, err = r.actions.Reconcile(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, wantExp, p.Exp)
}

func TestReconcile_LevelUpFires(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MapID = 2
	require.NoError(t, r.actions.Travel(ctx, p, atlas.ByID(3)))
	r.mem.Advance(4 * time.Hour)

	events, err := r.actions.Reconcile(ctx, p)
	require.NoError(t, err)

	var levelUps []player.Event
	for _, ev := range events {
		if ev.Kind == player.EventLevelUp {
			levelUps = append(levelUps, ev)
		}
	}
	require.NotEmpty(t, levelUps)
	assert.Equal(t, p.Level(), levelUps[len(levelUps)-1].Level)
}

func TestReconcile_SelfHealsStaleTravelStatus(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()

	// Simulate a crash between arming the timer and writing the destination:
	// status says travelling but no next-map key exists.
	p.Status = player.StatusTravelling

	events, err := r.actions.Reconcile(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, player.StatusIdle, p.Status)
	assert.Equal(t, 0, p.Exp)
}

func TestExplore_StartsAndMarksImmediately(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MapID = 1

	require.NoError(t, r.actions.Explore(ctx, p))
	assert.Equal(t, player.StatusExploring, p.Status)
	assert.True(t, p.HasExplored(1), "progress must be recorded before the timer runs out")

	// 50*1234/1_000_000 hours -> 222 seconds.
	assert.Equal(t, 222*time.Second, r.actions.Clock().ExploreRemaining(ctx, p.OwnerID))
}

func TestExplore_SafeNodeRejected(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()

	err := r.actions.Explore(ctx, p)
	var already *player.AlreadyExploredError
	require.ErrorAs(t, err, &already)
}

func TestExplore_AlreadyExploredRejected(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MapID = 1
	p.MarkExplored(1)

	err := r.actions.Explore(ctx, p)
	var already *player.AlreadyExploredError
	require.ErrorAs(t, err, &already)
}

func TestReconcile_ExploreAwardsOnce(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MapID = 2
	require.NoError(t, r.actions.Explore(ctx, p))

	r.mem.Advance(time.Hour)

	events, err := r.actions.Reconcile(ctx, p)
	require.NoError(t, err)
	wantExp := atlas.ActionExp(400 * 1234.0 / 1_000_000)
	require.NotEmpty(t, events)
	assert.Equal(t, player.EventExploreFinished, events[0].Kind)
	assert.Equal(t, wantExp, events[0].Exp)
	assert.Equal(t, wantExp, p.Exp)
	assert.Equal(t, player.StatusIdle, p.Status)

	events, err = r.actions.Reconcile(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, wantExp, p.Exp)
}

func TestReconcile_ExploreSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MapID = 2
	require.NoError(t, r.actions.Explore(ctx, p))

	r.mem.Advance(time.Hour)

	// A restart loses the in-memory status; only MapID comes back from the
	// database. The store's status key must still drive the settlement.
	reloaded := player.New(42, "Rosa", 0, time.Now().UTC())
	reloaded.MapID = 2
	require.Equal(t, player.StatusIdle, reloaded.Status)

	events, err := r.actions.Reconcile(ctx, reloaded)
	require.NoError(t, err)
	wantExp := atlas.ActionExp(400 * 1234.0 / 1_000_000)
	require.NotEmpty(t, events)
	assert.Equal(t, player.EventExploreFinished, events[0].Kind)
	assert.Equal(t, wantExp, reloaded.Exp)

	events, err = r.actions.Reconcile(ctx, reloaded)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, wantExp, reloaded.Exp)
}

func TestReconcile_HealsStaleTravelStatusAfterRestart(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()

	// A crash left the persisted status saying travelling with no timer and
	// no destination, and the restarted process loaded the player as idle.
	require.NoError(t, r.mem.Set(ctx, "status_42", "1", 0))

	events, err := r.actions.Reconcile(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, player.StatusIdle, p.Status)
	assert.Equal(t, 0, p.Exp)
	assert.Equal(t, player.StatusIdle, r.actions.Clock().StoredStatus(ctx, p.OwnerID))
}

func TestQuickTravel_PriceAndRelocation(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MarkExplored(1)
	p.MarkExplored(2)
	p.Gold = 500

	price, err := r.actions.QuickTravel(ctx, p, atlas.ByName("Deep Woods"))
	require.NoError(t, err)
	assert.Equal(t, 450, price, "sum of densities after the origin")
	assert.Equal(t, 2, p.MapID)
	assert.Equal(t, 50, p.Gold)
}

func TestQuickTravel_UnexploredPathRejected(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MarkExplored(2)
	p.Gold = 1000

	_, err := r.actions.QuickTravel(ctx, p, atlas.ByID(2))
	var notExplored *player.NotExploredError
	require.ErrorAs(t, err, &notExplored)
	assert.Equal(t, "Woods", notExplored.MapName)
	assert.Equal(t, 0, p.MapID)
	assert.Equal(t, 1000, p.Gold)
}

func TestQuickTravel_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MarkExplored(1)
	p.MarkExplored(2)
	p.Gold = 100

	_, err := r.actions.QuickTravel(ctx, p, atlas.ByID(2))
	var funds *player.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.Equal(t, 450, funds.Need)
	assert.Equal(t, 0, p.MapID)
	assert.Equal(t, 100, p.Gold)
}

func TestSpeedUp_ChargesAndExpires(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MapID = 1
	p.Gold = 30_000
	require.NoError(t, r.actions.Explore(ctx, p))

	cost, err := r.actions.SpeedUp(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 222*player.SpeedUpRate, cost)
	assert.Equal(t, 30_000-cost, p.Gold)

	r.mem.Advance(2 * time.Second)
	events, err := r.actions.Reconcile(ctx, p)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, player.EventExploreFinished, events[0].Kind)
}

func TestSpeedUp_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()
	p.MapID = 1
	p.Gold = 10
	require.NoError(t, r.actions.Explore(ctx, p))

	_, err := r.actions.SpeedUp(ctx, p)
	var funds *player.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.Equal(t, 10, p.Gold)
	assert.Greater(t, r.actions.Clock().ExploreRemaining(ctx, p.OwnerID), time.Duration(0))
}

func TestSpeedUp_IdleRejected(t *testing.T) {
	ctx := context.Background()
	r := newRig(t)
	p := newIdlePlayer()

	_, err := r.actions.SpeedUp(ctx, p)
	var notBusy *player.NotBusyError
	require.ErrorAs(t, err, &notBusy)
}
