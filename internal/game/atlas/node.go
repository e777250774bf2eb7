// Package atlas provides the game world model: map nodes, adjacency, and the
// density-driven cost formulas for travel and exploration.
package atlas

import (
	"math"
	"strconv"
)

// DefaultTravelDivisor converts summed node densities into travel hours.
// The config layer may override it per deployment.
const DefaultTravelDivisor = 1234

// knownRouteDiscount divides travel time when the traveller has already
// explored the destination node.
const knownRouteDiscount = 4

// Node represents a single map location.
type Node struct {
	// ID uniquely identifies this node.
	ID int
	// Name is the display name, matched case-insensitively on lookup.
	Name string
	// Density drives both travel-time and explore-time cost.
	Density int
	// Description is the flavor text shown to players.
	Description string
	// Safe marks a node with no hostile encounters; safe nodes never need
	// exploring.
	Safe bool
	// Hidden marks a placeholder node that cannot be travelled to.
	Hidden bool
	// Nearby lists adjacent node IDs. Adjacency is symmetric after load.
	Nearby []int
}

// IsNearby reports whether id is adjacent to this node.
func (n *Node) IsNearby(id int) bool {
	for _, nb := range n.Nearby {
		if nb == id {
			return true
		}
	}
	return false
}

// Ref identifies a node either by numeric ID or by name. Exactly one of the
// two forms is set; use ByID or ByName to construct one.
type Ref struct {
	id     int
	name   string
	byName bool
}

// ByID returns a Ref identifying a node by numeric ID.
func ByID(id int) Ref { return Ref{id: id} }

// ByName returns a Ref identifying a node by display name (case-insensitive).
func ByName(name string) Ref { return Ref{name: name, byName: true} }

// String returns the form the Ref was built from, for error messages.
func (r Ref) String() string {
	if r.byName {
		return r.name
	}
	return strconv.Itoa(r.id)
}

// TravelHours returns the travel duration in hours between two nodes:
// (from.Density + to.Density) / divisor, divided by 4 when the traveller
// already knows the route (has explored the destination).
//
// Precondition: from and to must be non-nil; divisor must be >= 1.
// Postcondition: Returns a non-negative duration in hours.
func TravelHours(from, to *Node, divisor int, knownRoute bool) float64 {
	hours := float64(from.Density+to.Density) / float64(divisor)
	if knownRoute {
		hours /= knownRouteDiscount
	}
	return hours
}

// ExploreHours returns the exploration duration in hours for a node:
// node.Density * divisor / 1_000_000.
//
// Precondition: node must be non-nil; divisor must be >= 1.
func ExploreHours(node *Node, divisor int) float64 {
	return float64(node.Density*divisor) / 1_000_000
}

// HoursToSeconds converts a fractional hour count to whole seconds, the
// resolution of the timer store.
//
// Postcondition: Returns floor(hours * 3600), never negative for non-negative input.
func HoursToSeconds(hours float64) int {
	return int(hours * 3600)
}

// ActionExp returns the experience awarded for completing a travel or
// exploration lasting the given number of hours: floor(hours * 10 / 3).
//
// Postcondition: Returns >= 0 for non-negative input.
func ActionExp(hours float64) int {
	return int(math.Floor(hours * 10 / 3))
}
