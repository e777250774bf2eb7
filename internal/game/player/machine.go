package player

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/duskfall/adventure/internal/game/atlas"
)

// SpeedUpRate is the currency cost per remaining second when forcing an
// action to finish early.
const SpeedUpRate = 100

// EventKind identifies a reconciliation outcome.
type EventKind int

const (
	// EventArrived fires when a finished travel timer moves the player.
	EventArrived EventKind = iota
	// EventExploreFinished fires when a finished exploration awards its exp.
	EventExploreFinished
	// EventLevelUp fires when awarded exp pushes the player past the next
	// level threshold.
	EventLevelUp
)

// Event is a single reconciliation outcome for the caller to present.
type Event struct {
	Kind  EventKind
	Node  *atlas.Node
	Exp   int
	Level int
}

// Actions drives the travel and exploration state machine for one registry
// of players. Whether an action has finished is decided by the Clock's TTL
// queries, so a process restart loses nothing: the next call to Reconcile
// picks up where the old process left off.
type Actions struct {
	atlas  *atlas.Atlas
	clock  *Clock
	logger *zap.Logger
}

// NewActions creates the state machine over the given atlas and clock.
//
// Precondition: all arguments must be non-nil.
func NewActions(world *atlas.Atlas, clock *Clock, logger *zap.Logger) *Actions {
	return &Actions{
		atlas:  world,
		clock:  clock,
		logger: logger,
	}
}

// Clock exposes the underlying timer store access.
func (a *Actions) Clock() *Clock { return a.clock }

// checkIdle returns a BusyError when either action timer is live.
func (a *Actions) checkIdle(ctx context.Context, p *Player) error {
	status, remaining := a.clock.Busy(ctx, p.OwnerID)
	if status == StatusIdle {
		return nil
	}
	return &BusyError{Name: p.Name, Action: status, Remaining: remaining}
}

// Travel starts a journey to an adjacent node.
//
// Precondition: dest must resolve to a real node adjacent to the player's
// current node, and the player must be idle.
// Postcondition: On success the travelling timer and pending destination are
// armed and the player's status is Travelling. The player's position does
// not change until reconciliation observes the expired timer.
func (a *Actions) Travel(ctx context.Context, p *Player, dest atlas.Ref) error {
	if err := a.checkIdle(ctx, p); err != nil {
		return err
	}
	from, ok := a.atlas.Get(p.MapID)
	if !ok {
		return &UnknownMapError{Requested: strconv.Itoa(p.MapID)}
	}
	to, ok := a.atlas.Resolve(dest)
	if !ok {
		return &UnknownMapError{Requested: dest.String()}
	}
	if to.Hidden || !from.IsNearby(to.ID) {
		return &NotNearbyError{From: from.Name, To: to.Name}
	}

	hours := a.atlas.TravelHours(from, to, p.HasExplored(to.ID))
	duration := time.Duration(atlas.HoursToSeconds(hours)) * time.Second
	if err := a.clock.StartTravel(ctx, p.OwnerID, duration, to.ID); err != nil {
		return err
	}
	p.Status = StatusTravelling
	p.NextMapID = to.ID
	a.logger.Info("travel started",
		zap.Int64("owner", p.OwnerID),
		zap.String("from", from.Name),
		zap.String("to", to.Name),
		zap.Duration("duration", duration))
	return nil
}

// QuickTravel relocates the player instantly along the cheapest path to a
// previously explored node, charging the summed density of every node on the
// path after the origin.
//
// Precondition: the player must be idle and must have explored every node on
// the path, destination included.
func (a *Actions) QuickTravel(ctx context.Context, p *Player, dest atlas.Ref) (int, error) {
	if err := a.checkIdle(ctx, p); err != nil {
		return 0, err
	}
	to, ok := a.atlas.Resolve(dest)
	if !ok {
		return 0, &UnknownMapError{Requested: dest.String()}
	}
	path, err := a.atlas.ShortestPath(p.MapID, to.ID)
	if err != nil {
		return 0, err
	}
	for _, id := range path {
		if !p.HasExplored(id) {
			node, _ := a.atlas.Get(id)
			name := "an unknown region"
			if node != nil {
				name = node.Name
			}
			return 0, &NotExploredError{MapName: name}
		}
	}
	price := a.atlas.PathCost(path)
	if !p.SpendGold(price) {
		return 0, &InsufficientFundsError{Need: price, Have: p.Gold}
	}
	p.MapID = to.ID
	a.logger.Info("quick travel",
		zap.Int64("owner", p.OwnerID),
		zap.String("to", to.Name),
		zap.Int("price", price))
	return price, nil
}

// Explore starts exploring the player's current node.
//
// Precondition: the node must not be safe and must not already be explored,
// and the player must be idle.
// Postcondition: the node is recorded as explored immediately, so progress
// survives a restart even before the timer runs out.
func (a *Actions) Explore(ctx context.Context, p *Player) error {
	if err := a.checkIdle(ctx, p); err != nil {
		return err
	}
	node, ok := a.atlas.Get(p.MapID)
	if !ok {
		return &UnknownMapError{Requested: strconv.Itoa(p.MapID)}
	}
	if node.Safe || p.HasExplored(node.ID) {
		return &AlreadyExploredError{MapName: node.Name}
	}

	hours := a.atlas.ExploreHours(node)
	duration := time.Duration(atlas.HoursToSeconds(hours)) * time.Second
	if err := a.clock.StartExplore(ctx, p.OwnerID, duration); err != nil {
		return err
	}
	p.Status = StatusExploring
	p.MarkExplored(node.ID)
	a.logger.Info("exploration started",
		zap.Int64("owner", p.OwnerID),
		zap.String("node", node.Name),
		zap.Duration("duration", duration))
	return nil
}

// Reconcile settles any finished action for the player. It is called before
// every player command and periodically by the flush loop, and it is
// idempotent: a live timer or an already-settled action produces no events.
//
// Postcondition: a finished travel moves the player and awards exp exactly
// once; a finished exploration awards exp exactly once; a stale travel timer
// with no pending destination self-heals to idle without awarding anything.
func (a *Actions) Reconcile(ctx context.Context, p *Player) ([]Event, error) {
	var events []Event

	// The in-memory status is lost on restart, so the persisted status key
	// is consulted alongside it. The store keys are the source of truth.
	stored := a.clock.StoredStatus(ctx, p.OwnerID)

	if a.clock.TravelRemaining(ctx, p.OwnerID) <= 0 {
		destID, pending := a.clock.PendingDestination(ctx, p.OwnerID)
		switch {
		case pending:
			arrived, err := a.settleTravel(ctx, p, destID)
			if err != nil {
				return events, err
			}
			events = append(events, arrived...)
		case p.Status == StatusTravelling || stored == StatusTravelling:
			// Stale status with no destination means the travel write was
			// interrupted before the destination landed. Nothing happened.
			p.Status = StatusIdle
			p.NextMapID = NoNextMap
			if err := a.clock.FinishTravel(ctx, p.OwnerID); err != nil {
				return events, err
			}
			a.logger.Warn("travel state healed to idle",
				zap.Int64("owner", p.OwnerID))
		}
	}

	if (p.Status == StatusExploring || stored == StatusExploring) &&
		a.clock.ExploreRemaining(ctx, p.OwnerID) <= 0 {
		finished, err := a.settleExplore(ctx, p)
		if err != nil {
			return events, err
		}
		events = append(events, finished...)
	}

	return events, nil
}

func (a *Actions) settleTravel(ctx context.Context, p *Player, destID int) ([]Event, error) {
	dest, ok := a.atlas.Get(destID)
	if !ok {
		// The destination vanished from the map set between deploys. Drop
		// the journey rather than strand the player on a missing node.
		a.logger.Warn("pending destination no longer exists",
			zap.Int64("owner", p.OwnerID),
			zap.Int("dest", destID))
		p.Status = StatusIdle
		p.NextMapID = NoNextMap
		return nil, a.clock.FinishTravel(ctx, p.OwnerID)
	}

	from, _ := a.atlas.Get(p.MapID)
	hours := atlas.TravelHours(from, dest, a.atlas.Divisor(), p.HasExplored(dest.ID))
	exp := atlas.ActionExp(hours)

	p.MapID = dest.ID
	p.NextMapID = NoNextMap
	p.Status = StatusIdle
	p.AddExp(exp)
	if err := a.clock.FinishTravel(ctx, p.OwnerID); err != nil {
		return nil, err
	}

	events := []Event{{Kind: EventArrived, Node: dest, Exp: exp}}
	events = append(events, a.checkLevelUp(p)...)
	a.logger.Info("arrived",
		zap.Int64("owner", p.OwnerID),
		zap.String("node", dest.Name),
		zap.Int("exp", exp))
	return events, nil
}

func (a *Actions) settleExplore(ctx context.Context, p *Player) ([]Event, error) {
	node, ok := a.atlas.Get(p.MapID)
	if !ok {
		return nil, &UnknownMapError{Requested: strconv.Itoa(p.MapID)}
	}
	exp := atlas.ActionExp(a.atlas.ExploreHours(node))

	p.Status = StatusIdle
	p.AddExp(exp)
	if err := a.clock.FinishExplore(ctx, p.OwnerID); err != nil {
		return nil, err
	}

	events := []Event{{Kind: EventExploreFinished, Node: node, Exp: exp}}
	events = append(events, a.checkLevelUp(p)...)
	a.logger.Info("exploration finished",
		zap.Int64("owner", p.OwnerID),
		zap.String("node", node.Name),
		zap.Int("exp", exp))
	return events, nil
}

func (a *Actions) checkLevelUp(p *Player) []Event {
	var events []Event
	for p.AdvanceLevel() {
		events = append(events, Event{Kind: EventLevelUp, Level: p.Level()})
	}
	return events
}

// SpeedUp charges the player to finish the current action early. The cost is
// the remaining whole seconds times SpeedUpRate. The timer is rewritten with
// a one-second expiry so the next Reconcile settles it normally.
func (a *Actions) SpeedUp(ctx context.Context, p *Player) (int, error) {
	status, remaining := a.clock.Busy(ctx, p.OwnerID)
	if status == StatusIdle {
		return 0, &NotBusyError{}
	}
	cost := int(remaining/time.Second) * SpeedUpRate
	if !p.SpendGold(cost) {
		return 0, &InsufficientFundsError{Need: cost, Have: p.Gold}
	}
	if err := a.clock.Expire(ctx, p.OwnerID, status); err != nil {
		p.AddGold(cost)
		return 0, err
	}
	a.logger.Info("action sped up",
		zap.Int64("owner", p.OwnerID),
		zap.Stringer("action", status),
		zap.Int("cost", cost))
	return cost, nil
}
