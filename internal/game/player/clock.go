package player

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/duskfall/adventure/internal/storage/redis"
)

// Timer-store key layout, one set per player:
//
//	travelling_<owner>  TTL key; remaining TTL = time left on the road
//	exploring_<owner>   TTL key; remaining TTL = time left exploring
//	next_map_<owner>    pending destination node ID while travelling
//	status_<owner>      persisted Status so restarts keep the action state
func travelKey(ownerID int64) string { return fmt.Sprintf("travelling_%d", ownerID) }
func exploreKey(ownerID int64) string { return fmt.Sprintf("exploring_%d", ownerID) }
func nextMapKey(ownerID int64) string { return fmt.Sprintf("next_map_%d", ownerID) }
func statusKey(ownerID int64) string { return fmt.Sprintf("status_%d", ownerID) }
func dailyKey(ownerID int64) string  { return fmt.Sprintf("daily_%d", ownerID) }

// Clock reads and writes the per-player timer keys. It is the only clock for
// long-running actions: whether an action has finished is always answered by
// querying the remaining TTL, never by an in-process timer.
type Clock struct {
	store redis.Store
}

// NewClock creates a Clock over the given store.
//
// Precondition: store must be non-nil.
func NewClock(store redis.Store) *Clock {
	return &Clock{store: store}
}

// TravelRemaining returns the time left on the travelling timer. Negative
// means no live timer.
func (c *Clock) TravelRemaining(ctx context.Context, ownerID int64) time.Duration {
	return c.store.TTL(ctx, travelKey(ownerID))
}

// ExploreRemaining returns the time left on the exploring timer. Negative
// means no live timer.
func (c *Clock) ExploreRemaining(ctx context.Context, ownerID int64) time.Duration {
	return c.store.TTL(ctx, exploreKey(ownerID))
}

// Busy reports the live action, if any, and its remaining time.
//
// Postcondition: Returns (StatusIdle, 0) when neither timer is live. At most
// one timer is live per player by construction.
func (c *Clock) Busy(ctx context.Context, ownerID int64) (Status, time.Duration) {
	if remaining := c.TravelRemaining(ctx, ownerID); remaining > 0 {
		return StatusTravelling, remaining
	}
	if remaining := c.ExploreRemaining(ctx, ownerID); remaining > 0 {
		return StatusExploring, remaining
	}
	return StatusIdle, 0
}

// StartTravel arms the travelling timer and records the pending destination.
// The destination key has no expiry: it is the marker that a finished timer
// still awaits reconciliation.
//
// Precondition: duration must be positive.
func (c *Clock) StartTravel(ctx context.Context, ownerID int64, duration time.Duration, destID int) error {
	secs := strconv.Itoa(int(duration / time.Second))
	if err := c.store.Set(ctx, travelKey(ownerID), secs, duration); err != nil {
		return err
	}
	if err := c.store.Set(ctx, nextMapKey(ownerID), strconv.Itoa(destID), 0); err != nil {
		return err
	}
	return c.store.Set(ctx, statusKey(ownerID), strconv.Itoa(int(StatusTravelling)), 0)
}

// StartExplore arms the exploring timer.
//
// Precondition: duration must be positive.
func (c *Clock) StartExplore(ctx context.Context, ownerID int64, duration time.Duration) error {
	secs := strconv.Itoa(int(duration / time.Second))
	if err := c.store.Set(ctx, exploreKey(ownerID), secs, duration); err != nil {
		return err
	}
	return c.store.Set(ctx, statusKey(ownerID), strconv.Itoa(int(StatusExploring)), 0)
}

// PendingDestination returns the destination node recorded when travel
// started, or (0, false) when none is pending.
func (c *Clock) PendingDestination(ctx context.Context, ownerID int64) (int, bool) {
	val, ok := c.store.Get(ctx, nextMapKey(ownerID))
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return id, true
}

// StoredStatus returns the persisted action status, defaulting to idle when
// absent or unparsable.
func (c *Clock) StoredStatus(ctx context.Context, ownerID int64) Status {
	val, ok := c.store.Get(ctx, statusKey(ownerID))
	if !ok {
		return StatusIdle
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < int(StatusIdle) || n > int(StatusExploring) {
		return StatusIdle
	}
	return Status(n)
}

// FinishTravel clears the pending destination and resets the status to idle.
func (c *Clock) FinishTravel(ctx context.Context, ownerID int64) error {
	if err := c.store.Delete(ctx, nextMapKey(ownerID)); err != nil {
		return err
	}
	return c.store.Set(ctx, statusKey(ownerID), strconv.Itoa(int(StatusIdle)), 0)
}

// FinishExplore resets the status to idle.
func (c *Clock) FinishExplore(ctx context.Context, ownerID int64) error {
	return c.store.Set(ctx, statusKey(ownerID), strconv.Itoa(int(StatusIdle)), 0)
}

// Expire rewrites the given action's timer with a one-second expiry, so the
// next reconciliation check finds it finished. This is the administrative
// "speed up" primitive.
func (c *Clock) Expire(ctx context.Context, ownerID int64, action Status) error {
	switch action {
	case StatusTravelling:
		return c.store.Set(ctx, travelKey(ownerID), "0", time.Second)
	case StatusExploring:
		return c.store.Set(ctx, exploreKey(ownerID), "0", time.Second)
	default:
		return fmt.Errorf("no timer for status %s", action)
	}
}

// DailyRemaining returns the time left on the daily-reward cooldown.
// Negative means the reward is claimable.
func (c *Clock) DailyRemaining(ctx context.Context, ownerID int64) time.Duration {
	return c.store.TTL(ctx, dailyKey(ownerID))
}

// StartDaily arms the daily-reward cooldown.
func (c *Clock) StartDaily(ctx context.Context, ownerID int64, cooldown time.Duration) error {
	return c.store.Set(ctx, dailyKey(ownerID), "1", cooldown)
}

// Clear removes every timer key for a player. Called on player deletion.
func (c *Clock) Clear(ctx context.Context, ownerID int64) error {
	return c.store.Delete(ctx,
		travelKey(ownerID),
		exploreKey(ownerID),
		nextMapKey(ownerID),
		statusKey(ownerID),
		dailyKey(ownerID),
	)
}
