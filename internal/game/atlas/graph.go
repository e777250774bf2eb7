package atlas

import (
	"container/heap"
	"fmt"
)

// ErrNoPath is returned by ShortestPath when the destination is unreachable.
type ErrNoPath struct {
	From, To int
}

func (e ErrNoPath) Error() string {
	return fmt.Sprintf("no path from node %d to node %d", e.From, e.To)
}

// pathItem is a priority-queue entry for Dijkstra.
type pathItem struct {
	node int
	cost int
}

type pathQueue []pathItem

func (q pathQueue) Len() int            { return len(q) }
func (q pathQueue) Less(i, j int) bool  { return q[i].cost < q[j].cost }
func (q pathQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x interface{}) { *q = append(*q, x.(pathItem)) }
func (q *pathQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ShortestPath runs Dijkstra over the adjacency graph where each edge is
// weighted by the sum of its endpoint densities. It returns the node IDs
// along the cheapest route, excluding the start node and ending with endID.
// Quick travel is priced as the sum of densities along that returned path.
//
// Precondition: startID and endID must be valid node IDs.
// Postcondition: Returns a non-empty path or an error; the path never
// contains startID.
func (a *Atlas) ShortestPath(startID, endID int) ([]int, error) {
	if _, ok := a.nodes[startID]; !ok {
		return nil, fmt.Errorf("unknown start node %d", startID)
	}
	if _, ok := a.nodes[endID]; !ok {
		return nil, fmt.Errorf("unknown end node %d", endID)
	}
	if startID == endID {
		return nil, fmt.Errorf("already at node %d", endID)
	}

	dist := map[int]int{startID: 0}
	prev := make(map[int]int)
	visited := make(map[int]bool)

	q := &pathQueue{{node: startID, cost: 0}}
	heap.Init(q)

	for q.Len() > 0 {
		cur := heap.Pop(q).(pathItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == endID {
			break
		}
		curNode := a.nodes[cur.node]
		for _, nb := range curNode.Nearby {
			next, ok := a.nodes[nb]
			if !ok || visited[nb] {
				continue
			}
			weight := curNode.Density + next.Density
			alt := cur.cost + weight
			if d, seen := dist[nb]; !seen || alt < d {
				dist[nb] = alt
				prev[nb] = cur.node
				heap.Push(q, pathItem{node: nb, cost: alt})
			}
		}
	}

	if !visited[endID] {
		return nil, ErrNoPath{From: startID, To: endID}
	}

	var path []int
	for at := endID; at != startID; at = prev[at] {
		path = append(path, at)
	}
	// Reverse into start→end order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// PathCost returns the quick-travel price of a path: the summed density of
// every node on it. Paths from ShortestPath exclude the origin, so the
// origin's density is never charged.
//
// Precondition: all IDs in path must be valid node IDs.
func (a *Atlas) PathCost(path []int) int {
	total := 0
	for _, id := range path {
		if n, ok := a.nodes[id]; ok {
			total += n.Density
		}
	}
	return total
}
