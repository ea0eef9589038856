package systems

import (
	"container/heap"

	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/world"
)

// minStepCost keeps every step strictly positive so searches terminate.
const minStepCost = 0.05

// trailBonusThreshold is the slime above which slime preference applies.
const trailBonusThreshold = 0.3

// CostModel prices entering a tile for route planning.
type CostModel struct {
	Terrain map[world.Terrain]config.TerrainStats
	Weights config.RouteWeights
}

// StepCost returns the cost of entering tile, or false if the tile cannot be entered.
//
// The base cost is 1 plus the terrain's hydration cost. On hydration-costly terrain the
// penalty shrinks by K per unit slime, never below zero. Tiles with slime above the trail
// threshold are discounted further by SlimePreference per unit slime.
func (c CostModel) StepCost(tile *world.Tile) (float64, bool) {
	stats, ok := c.Terrain[tile.Terrain]
	if !ok || !stats.Passable() {
		return 0, false
	}
	penalty := stats.HydrationCost
	if penalty > 0 {
		penalty = max(0, penalty-c.Weights.K*tile.Slime)
	}
	cost := 1 + penalty
	if c.Weights.SlimePreference > 0 && tile.Slime > trailBonusThreshold {
		cost -= c.Weights.SlimePreference * tile.Slime
	}
	return max(minStepCost, cost), true
}

// astarNode is a node in the A* search.
type astarNode struct {
	id    int     // Flat tile index
	f     float64 // f = g + h (priority)
	seq   int     // Insertion order, breaks f ties deterministically
	index int     // Heap index
}

// nodeHeap implements heap.Interface for A* open set.
type nodeHeap []*astarNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

// neighborOffsets are the four cardinal moves, in expansion order.
var neighborOffsets = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// FindPath computes a 4-connected route from start to goal, both inclusive.
// Returns nil if either end is out of bounds or the goal cannot be reached.
func FindPath(m *world.Map, start, goal world.Point, model CostModel) []world.Point {
	if !m.InBounds(start.X, start.Y) || !m.InBounds(goal.X, goal.Y) {
		return nil
	}
	if start == goal {
		return []world.Point{start}
	}

	startID := m.Index(start.X, start.Y)
	goalID := m.Index(goal.X, goal.Y)

	gScore := map[int]float64{startID: 0}
	cameFrom := make(map[int]int)
	open := make(map[int]*astarNode)
	closed := make(map[int]struct{})

	openHeap := &nodeHeap{}
	seq := 0
	startNode := &astarNode{id: startID, f: manhattan(start, goal), seq: seq}
	heap.Push(openHeap, startNode)
	open[startID] = startNode

	for openHeap.Len() > 0 {
		current := heap.Pop(openHeap).(*astarNode)
		delete(open, current.id)

		if current.id == goalID {
			return reconstructPath(m, cameFrom, startID, goalID)
		}
		closed[current.id] = struct{}{}

		cx, cy := m.Coords(current.id)
		for _, off := range neighborOffsets {
			nx, ny := cx+off[0], cy+off[1]
			tile := m.At(nx, ny)
			if tile == nil {
				continue
			}
			neighborID := m.Index(nx, ny)
			if _, ok := closed[neighborID]; ok {
				continue
			}
			step, ok := model.StepCost(tile)
			if !ok {
				continue
			}

			tentativeG := gScore[current.id] + step
			if existing, seen := gScore[neighborID]; seen && tentativeG >= existing {
				continue
			}
			cameFrom[neighborID] = current.id
			gScore[neighborID] = tentativeG
			f := tentativeG + manhattan(world.Point{X: nx, Y: ny}, goal)

			if node, ok := open[neighborID]; ok {
				node.f = f
				heap.Fix(openHeap, node.index)
				continue
			}
			seq++
			node := &astarNode{id: neighborID, f: f, seq: seq}
			heap.Push(openHeap, node)
			open[neighborID] = node
		}
	}

	return nil
}

func manhattan(a, b world.Point) float64 {
	return float64(absInt(a.X-b.X) + absInt(a.Y-b.Y))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// reconstructPath builds the path from cameFrom map.
func reconstructPath(m *world.Map, cameFrom map[int]int, startID, goalID int) []world.Point {
	var ids []int
	current := goalID
	for current != startID {
		ids = append(ids, current)
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		current = prev
	}
	ids = append(ids, startID)

	path := make([]world.Point, len(ids))
	for i := range ids {
		x, y := m.Coords(ids[len(ids)-1-i])
		path[i] = world.Point{X: x, Y: y}
	}
	return path
}

// PathCost sums the cost of entering every tile after the first.
func PathCost(m *world.Map, path []world.Point, model CostModel) float64 {
	total := 0.0
	for _, p := range path[min(1, len(path)):] {
		if tile := m.At(p.X, p.Y); tile != nil {
			c, _ := model.StepCost(tile)
			total += c
		}
	}
	return total
}

// RoundTrip returns the path followed by its reverse, without repeating the far end.
func RoundTrip(path []world.Point) []world.Point {
	if len(path) < 2 {
		return append([]world.Point(nil), path...)
	}
	out := make([]world.Point, 0, 2*len(path)-1)
	out = append(out, path...)
	for i := len(path) - 2; i >= 0; i-- {
		out = append(out, path[i])
	}
	return out
}

// MergePaths joins two legs, dropping the duplicated junction point.
func MergePaths(first, second []world.Point) []world.Point {
	if len(first) == 0 {
		return append([]world.Point(nil), second...)
	}
	if len(second) == 0 {
		return append([]world.Point(nil), first...)
	}
	out := make([]world.Point, 0, len(first)+len(second)-1)
	out = append(out, first...)
	return append(out, second[1:]...)
}

// PathHasSlime reports whether any tile on the path carries at least threshold slime.
func PathHasSlime(m *world.Map, path []world.Point, threshold float64) bool {
	for _, p := range path {
		if tile := m.At(p.X, p.Y); tile != nil && tile.Slime >= threshold {
			return true
		}
	}
	return false
}
