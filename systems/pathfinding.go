package systems

import "sync"

// PathfinderParams holds tunable parameters for grid search.
type PathfinderParams struct {
	// MaxExpansions caps the nodes expanded per search (0 = unlimited).
	// The cost function defines the grid, which may be unbounded, so hosts
	// should set this.
	MaxExpansions int

	// MinWeight is the smallest terrain weight the host ever returns. The
	// octile heuristic is scaled by it. With the default of 1 the heuristic
	// is plain octile distance, which overestimates on cells weighted below
	// 1 (roads) and can then return a non-optimal path. Zero or less means
	// unset and falls back to 1; CostGrid never reports 0 since it floors
	// passable weights at MinPassableWeight.
	MinWeight float64

	// NoCornerCutting rejects a diagonal step when either orthogonal cell it
	// passes between is impassable.
	NoCornerCutting bool
}

// DefaultPathfinderParams returns sensible defaults for pathfinding.
func DefaultPathfinderParams() PathfinderParams {
	return PathfinderParams{
		MaxExpansions: 4096,
		MinWeight:     1,
	}
}

func (p PathfinderParams) heuristicScale() float64 {
	if p.MinWeight > 0 {
		return p.MinWeight
	}
	return 1
}

// Pathfinder runs A* searches. It is safe for concurrent use: each call
// borrows its own Search from a pool.
type Pathfinder struct {
	params PathfinderParams
	pool   sync.Pool
}

// NewPathfinder creates a pathfinder with the given parameters.
func NewPathfinder(params PathfinderParams) *Pathfinder {
	p := &Pathfinder{params: params}
	p.pool.New = func() any { return NewSearch() }
	return p
}

// Params returns the parameters searches run with.
func (p *Pathfinder) Params() PathfinderParams {
	return p.params
}

// FindPath computes a path for req. ok is false when there is none.
func (p *Pathfinder) FindPath(req PathRequest) (Path, bool) {
	s := p.pool.Get().(*Search)
	defer p.pool.Put(s)
	return s.Find(req, p.params)
}
