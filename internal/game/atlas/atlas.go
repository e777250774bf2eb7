package atlas

import (
	"strings"

	"go.uber.org/zap"
)

// Atlas is the in-memory registry of all map nodes. It is built once at
// startup and immutable afterwards; no player action mutates the map.
type Atlas struct {
	nodes   map[int]*Node
	byName  map[string]int
	divisor int
}

// New builds an Atlas from loaded nodes. Adjacency is made symmetric: if A
// lists B as nearby, B gains A. References to unknown node IDs are logged
// and dropped.
//
// Precondition: nodes must have unique IDs (the loader enforces this);
// divisor must be >= 1; logger must be non-nil.
// Postcondition: Returns an Atlas whose adjacency is symmetric.
func New(nodes []*Node, divisor int, logger *zap.Logger) *Atlas {
	a := &Atlas{
		nodes:   make(map[int]*Node, len(nodes)),
		byName:  make(map[string]int, len(nodes)),
		divisor: divisor,
	}
	for _, n := range nodes {
		a.nodes[n.ID] = n
		a.byName[strings.ToLower(n.Name)] = n.ID
	}

	for _, n := range nodes {
		for _, nb := range n.Nearby {
			other, ok := a.nodes[nb]
			if !ok {
				logger.Warn("nearby reference to unknown node, dropping",
					zap.Int("node", n.ID), zap.Int("nearby", nb))
				continue
			}
			if !other.IsNearby(n.ID) {
				other.Nearby = append(other.Nearby, n.ID)
			}
		}
	}
	return a
}

// Get returns the node with the given ID.
//
// Postcondition: Returns (node, true) if found, or (nil, false) otherwise.
func (a *Atlas) Get(id int) (*Node, bool) {
	n, ok := a.nodes[id]
	return n, ok
}

// Resolve looks a node up by Ref. Name lookups are case-insensitive.
// A miss returns (nil, false); callers must check.
func (a *Atlas) Resolve(ref Ref) (*Node, bool) {
	if ref.byName {
		id, ok := a.byName[strings.ToLower(ref.name)]
		if !ok {
			return nil, false
		}
		return a.Get(id)
	}
	return a.Get(ref.id)
}

// Nodes returns all nodes in no particular order.
func (a *Atlas) Nodes() []*Node {
	out := make([]*Node, 0, len(a.nodes))
	for _, n := range a.nodes {
		out = append(out, n)
	}
	return out
}

// Len returns the number of nodes in the atlas.
func (a *Atlas) Len() int { return len(a.nodes) }

// Divisor returns the travel divisor this atlas was built with.
func (a *Atlas) Divisor() int { return a.divisor }

// TravelHours returns the travel duration in hours between two nodes using
// the atlas's divisor.
func (a *Atlas) TravelHours(from, to *Node, knownRoute bool) float64 {
	return TravelHours(from, to, a.divisor, knownRoute)
}

// ExploreHours returns the exploration duration in hours for a node using
// the atlas's divisor.
func (a *Atlas) ExploreHours(node *Node) float64 {
	return ExploreHours(node, a.divisor)
}
