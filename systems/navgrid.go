package systems

import "github.com/pthm-cable/fauna/components"

// CostGrid stores a terrain weight per cell and serves as the CostFunc the
// pathfinder consumes. Cells outside the grid are impassable.
type CostGrid struct {
	weights  []float64
	cellSize float32 // world units per cell
	width    int     // grid width in cells
	height   int     // grid height in cells
}

// NewCostGrid creates a w x h grid with every cell impassable.
func NewCostGrid(w, h int, cellSize float32) *CostGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	g := &CostGrid{
		weights:  make([]float64, w*h),
		cellSize: cellSize,
		width:    w,
		height:   h,
	}
	g.Fill(Impassable)
	return g
}

// Width returns the grid width in cells.
func (g *CostGrid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *CostGrid) Height() int { return g.height }

// CellSize returns the world size of one cell.
func (g *CostGrid) CellSize() float32 { return g.cellSize }

// InBounds reports whether c lies on the grid.
func (g *CostGrid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// Cost returns the terrain weight of c. It satisfies CostFunc.
func (g *CostGrid) Cost(c Cell) float64 {
	if !g.InBounds(c) {
		return Impassable
	}
	return g.weights[c.Y*g.width+c.X]
}

// Set assigns the terrain weight of c. Out-of-bounds cells are ignored.
func (g *CostGrid) Set(c Cell, w float64) {
	if !g.InBounds(c) {
		return
	}
	g.weights[c.Y*g.width+c.X] = floorWeight(w)
}

// Fill assigns w to every cell.
func (g *CostGrid) Fill(w float64) {
	w = floorWeight(w)
	for i := range g.weights {
		g.weights[i] = w
	}
}

// IsBlocked returns true if the cell cannot be entered.
func (g *CostGrid) IsBlocked(c Cell) bool {
	return !Passable(g.Cost(c))
}

// IsBlockedWorld returns true if the world position is in a blocked cell.
func (g *CostGrid) IsBlockedWorld(p components.Position) bool {
	return g.IsBlocked(g.WorldToCell(p))
}

// WorldToCell converts world coordinates to grid coordinates.
func (g *CostGrid) WorldToCell(p components.Position) Cell {
	return Cell{X: floorDiv(p.X, g.cellSize), Y: floorDiv(p.Y, g.cellSize)}
}

// CellToWorld converts grid coordinates to world coordinates (cell center).
func (g *CostGrid) CellToWorld(c Cell) components.Position {
	return components.Position{
		X: (float32(c.X) + 0.5) * g.cellSize,
		Y: (float32(c.Y) + 0.5) * g.cellSize,
	}
}

// Waypoints converts a path to world-space cell centers.
func (g *CostGrid) Waypoints(p Path) []components.Position {
	out := make([]components.Position, len(p.Cells))
	for i, c := range p.Cells {
		out[i] = g.CellToWorld(c)
	}
	return out
}

// NearestOpen finds the closest passable cell to c by searching rings of
// increasing radius. ok is false if none lies within maxRadius.
func (g *CostGrid) NearestOpen(c Cell, maxRadius int) (Cell, bool) {
	if !g.IsBlocked(c) {
		return c, true
	}
	for radius := 1; radius <= maxRadius; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if abs(dx) != radius && abs(dy) != radius {
					continue
				}
				n := Cell{c.X + dx, c.Y + dy}
				if !g.IsBlocked(n) {
					return n, true
				}
			}
		}
	}
	return Cell{}, false
}

// MinWeight returns the smallest passable weight on the grid, or 1 if the
// grid has no passable cell.
func (g *CostGrid) MinWeight() float64 {
	minW := 0.0
	found := false
	for _, w := range g.weights {
		if !Passable(w) {
			continue
		}
		if !found || w < minW {
			minW = w
			found = true
		}
	}
	if !found {
		return 1
	}
	return minW
}

// MinPassableWeight is the smallest weight a CostGrid stores for a passable
// cell. Lower passable weights are raised to it, so the heuristic scale taken
// from MinWeight is never 0.
const MinPassableWeight = 0.05

func floorWeight(w float64) float64 {
	if Passable(w) && w < MinPassableWeight {
		return MinPassableWeight
	}
	return w
}

func floorDiv(v, size float32) int {
	q := v / size
	i := int(q)
	if q < 0 && float32(i) != q {
		i--
	}
	return i
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
