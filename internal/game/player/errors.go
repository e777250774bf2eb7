package player

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoPlayer is returned when the acting identity owns no player.
var ErrNoPlayer = errors.New("you don't have a player")

// ErrNonPositiveAmount is returned for transfers of zero or negative gold.
var ErrNonPositiveAmount = errors.New("amount must be positive")

// BusyError reports that a player cannot start an action because another
// long-running action is still underway. Remaining is derived from whichever
// timer is live so the caller can tell the user when to come back.
type BusyError struct {
	Name      string
	Action    Status
	Remaining time.Duration
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("%s is busy %s and will finish in %s",
		e.Name, e.Action, e.Remaining.Round(time.Second))
}

// NotNearbyError reports a travel request to a node that is not adjacent to
// the player's current node.
type NotNearbyError struct {
	From, To string
}

func (e *NotNearbyError) Error() string {
	return fmt.Sprintf("%s isn't nearby %s", e.To, e.From)
}

// UnknownMapError reports a destination that resolved to nothing.
type UnknownMapError struct {
	Requested string
}

func (e *UnknownMapError) Error() string {
	return fmt.Sprintf("unknown map %q", e.Requested)
}

// AlreadyExploredError reports an explore request on a node that needs no
// exploring (safe, or already in the player's explored set).
type AlreadyExploredError struct {
	MapName string
}

func (e *AlreadyExploredError) Error() string {
	return fmt.Sprintf("%s is already explored", e.MapName)
}

// NotExploredError reports a quick-travel request through a node the player
// has not explored yet.
type NotExploredError struct {
	MapName string
}

func (e *NotExploredError) Error() string {
	return fmt.Sprintf("you must explore %s first", e.MapName)
}

// InsufficientFundsError reports an action the player cannot afford.
type InsufficientFundsError struct {
	Need, Have int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("this costs %d G, but you only have %d G", e.Need, e.Have)
}

// NameError reports an invalid player name.
type NameError struct {
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("invalid name: %s", e.Reason)
}

// ExistsError reports a creation attempt by an identity that already owns a
// player.
type ExistsError struct {
	Name string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("you already own %q", e.Name)
}

// CooldownError reports a daily-reward claim that is still cooling down.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("already claimed, try again in %s", e.Remaining.Round(time.Second))
}

// NotBusyError reports a speed-up request with no action to speed up.
type NotBusyError struct{}

func (e *NotBusyError) Error() string {
	return "you aren't doing anything to speed up"
}
