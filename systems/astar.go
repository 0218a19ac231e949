package systems

import (
	"math"

	"github.com/pthm-cable/fauna/pqueue"
)

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

// Impassable is the reserved terrain weight of a cell that can never be entered.
// Any negative, NaN or +Inf weight is treated the same way.
const Impassable = -1.0

// CostFunc returns the terrain weight of a cell: a multiplier on the base step
// cost of entering it, or Impassable.
type CostFunc func(c Cell) float64

// Passable reports whether a terrain weight can be entered.
func Passable(w float64) bool {
	return w >= 0 && !math.IsInf(w, 1)
}

// PathRequest describes one search.
type PathRequest struct {
	Start, Goal Cell
	Cost        CostFunc
}

// Path is a search result: the cells from the first step after Start through
// Goal, and the total weighted cost of walking them.
type Path struct {
	Cells []Cell
	Cost  float64
}

// Len returns the number of steps.
func (p Path) Len() int {
	return len(p.Cells)
}

// neighborOffsets lists the 8-connected moves, orthogonal first.
var neighborOffsets = [8]struct {
	dx, dy int
	base   float64
}{
	{-1, 0, 1}, // W
	{1, 0, 1},  // E
	{0, -1, 1}, // N
	{0, 1, 1},  // S
	{-1, -1, math.Sqrt2},
	{1, -1, math.Sqrt2},
	{-1, 1, math.Sqrt2},
	{1, 1, math.Sqrt2},
}

// searchNode is the per-cell bookkeeping of one search.
type searchNode struct {
	cell   Cell
	g, h   float64
	parent *searchNode
}

// Search holds the buffers of an A* search. Buffers are reused between
// calls, so a Search must not be used by two goroutines at once; give each
// caller its own, or go through Pathfinder which pools them.
type Search struct {
	open   *pqueue.Queue[Cell]
	closed map[Cell]struct{}
	nodes  map[Cell]*searchNode
	arena  []searchNode
	used   int

	// Expanded is the number of nodes expanded by the last search.
	Expanded int
}

// NewSearch creates a search context with pre-sized buffers.
func NewSearch() *Search {
	return &Search{
		open:   pqueue.New[Cell](256),
		closed: make(map[Cell]struct{}, 256),
		nodes:  make(map[Cell]*searchNode, 256),
		arena:  make([]searchNode, 0, 256),
	}
}

func (s *Search) reset() {
	s.open.Reset()
	clear(s.closed)
	clear(s.nodes)
	s.used = 0
	s.Expanded = 0
}

// node allocates a node from the arena. Nodes are only referenced from
// s.nodes and parent links, both of which are dropped on reset.
func (s *Search) node(c Cell, g, h float64, parent *searchNode) *searchNode {
	if s.used == len(s.arena) {
		if len(s.arena) == cap(s.arena) {
			// Growing would move nodes that parent links point at; start a
			// fresh block instead and let the old one be collected.
			s.arena = make([]searchNode, 0, 2*cap(s.arena)+1)
			s.used = 0
		}
		s.arena = s.arena[:len(s.arena)+1]
	}
	n := &s.arena[s.used]
	s.used++
	*n = searchNode{cell: c, g: g, h: h, parent: parent}
	return n
}

// Find runs A* from req.Start to req.Goal.
// ok is false when no path exists or the expansion budget ran out.
func (s *Search) Find(req PathRequest, params PathfinderParams) (path Path, ok bool) {
	s.reset()
	if req.Cost == nil {
		return Path{}, false
	}
	if req.Start == req.Goal {
		return Path{Cells: []Cell{}}, true
	}
	if !Passable(req.Cost(req.Goal)) {
		return Path{}, false
	}

	hScale := params.heuristicScale()
	start := s.node(req.Start, 0, hScale*Octile(req.Start, req.Goal), nil)
	s.nodes[req.Start] = start
	s.open.Push(req.Start, start.h)

	for {
		cur, _, more := s.open.Pop()
		if !more {
			return Path{}, false
		}
		current := s.nodes[cur]
		if cur == req.Goal {
			return reconstruct(current), true
		}

		if params.MaxExpansions > 0 && s.Expanded >= params.MaxExpansions {
			return Path{}, false
		}
		s.closed[cur] = struct{}{}
		s.Expanded++

		for _, off := range neighborOffsets {
			next := Cell{cur.X + off.dx, cur.Y + off.dy}
			if _, done := s.closed[next]; done {
				continue
			}
			w := req.Cost(next)
			if !Passable(w) {
				continue
			}
			if params.NoCornerCutting && off.dx != 0 && off.dy != 0 {
				if !Passable(req.Cost(Cell{cur.X + off.dx, cur.Y})) ||
					!Passable(req.Cost(Cell{cur.X, cur.Y + off.dy})) {
					continue
				}
			}

			g := current.g + off.base*w
			n, seen := s.nodes[next]
			if !seen {
				n = s.node(next, g, hScale*Octile(next, req.Goal), current)
				s.nodes[next] = n
				s.open.Push(next, g+n.h)
				continue
			}
			if g < n.g {
				n.g = g
				n.parent = current
				s.open.Update(next, g+n.h)
			}
		}
	}
}

// reconstruct walks parent links back from the goal. The start cell is not
// part of the result.
func reconstruct(goal *searchNode) Path {
	steps := 0
	for n := goal; n.parent != nil; n = n.parent {
		steps++
	}
	cells := make([]Cell, steps)
	i := steps - 1
	for n := goal; n.parent != nil; n = n.parent {
		cells[i] = n.cell
		i--
	}
	return Path{Cells: cells, Cost: goal.g}
}

// Octile returns the 8-directional distance between two cells using unit
// orthogonal and sqrt(2) diagonal steps.
func Octile(a, b Cell) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
}
