// Package systems provides the per-tick passes of the simulation: grid
// pathfinding, vitals, perception and movement.
package systems

import (
	"cmp"
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fauna/components"
)

// Target is something an agent can perceive: another creature or a food item.
type Target struct {
	Entity  ecs.Entity
	ID      uint32 // Creature ID; 0 for food
	Species uint16
	IsFood  bool
	Food    components.FoodKind
	Pos     components.Position
	DistSq  float32 // Squared distance from the query origin
}

// Dist returns the distance from the query origin.
func (t Target) Dist() float32 {
	return float32(math.Sqrt(float64(t.DistSq)))
}

// TargetQuery selects targets by species and/or food kind.
type TargetQuery struct {
	Species []uint16
	Food    []components.FoodKind
	Exclude uint32 // Creature ID to skip, usually the asking agent
}

// Matches reports whether t is selected by the query.
func (q TargetQuery) Matches(t Target) bool {
	if t.IsFood {
		return slices.Contains(q.Food, t.Food)
	}
	if t.ID != 0 && t.ID == q.Exclude {
		return false
	}
	return slices.Contains(q.Species, t.Species)
}

// Empty reports whether the query can match nothing.
func (q TargetQuery) Empty() bool {
	return len(q.Species) == 0 && len(q.Food) == 0
}

// SpatialIndex provides radius queries over a bucket grid. It is rebuilt
// from scratch every tick.
type SpatialIndex struct {
	cellSize float32
	cols     int
	rows     int
	cells    [][]Target
}

// MaxQueryResults caps the number of targets returned by a single query.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 128

// NewSpatialIndex creates an index covering a width x height world.
func NewSpatialIndex(width, height, cellSize float32) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]Target, cols*rows)
	for i := range cells {
		cells[i] = make([]Target, 0, 8)
	}
	return &SpatialIndex{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes every target.
func (s *SpatialIndex) Clear() {
	for i := range s.cells {
		s.cells[i] = s.cells[i][:0]
	}
}

// Insert adds a target at t.Pos.
func (s *SpatialIndex) Insert(t Target) {
	col, row := s.cellOf(t.Pos)
	idx := row*s.cols + col
	s.cells[idx] = append(s.cells[idx], t)
}

// QueryInto appends targets within radius of origin that match q to dst, up
// to MaxQueryResults. Results are unordered.
func (s *SpatialIndex) QueryInto(dst []Target, origin components.Position, radius float32, q TargetQuery) []Target {
	if q.Empty() || radius <= 0 {
		return dst
	}
	radiusSq := radius * radius
	cellRadius := int(radius/s.cellSize) + 1
	centerCol, centerRow := s.cellOf(origin)

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= s.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= s.cols {
				continue
			}
			for _, t := range s.cells[row*s.cols+col] {
				if !q.Matches(t) {
					continue
				}
				dx := t.Pos.X - origin.X
				dy := t.Pos.Y - origin.Y
				distSq := dx*dx + dy*dy
				if distSq > radiusSq {
					continue
				}
				t.DistSq = distSq
				dst = append(dst, t)
				if len(dst) >= MaxQueryResults {
					return dst
				}
			}
		}
	}
	return dst
}

// Has reports whether any matching target lies within radius.
func (s *SpatialIndex) Has(origin components.Position, radius float32, q TargetQuery) bool {
	var buf [1]Target
	return len(s.QueryInto(buf[:0], origin, radius, q)) > 0
}

// Count returns the number of matching targets within radius.
func (s *SpatialIndex) Count(origin components.Position, radius float32, q TargetQuery) int {
	return len(s.QueryInto(nil, origin, radius, q))
}

// Sorted returns matching targets within radius, nearest first. Equal
// distances are ordered by creature ID so results are deterministic.
func (s *SpatialIndex) Sorted(origin components.Position, radius float32, q TargetQuery) []Target {
	out := s.QueryInto(nil, origin, radius, q)
	slices.SortStableFunc(out, func(a, b Target) int {
		if c := cmp.Compare(a.DistSq, b.DistSq); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// cellOf returns the clamped bucket coordinates of a world position.
func (s *SpatialIndex) cellOf(p components.Position) (col, row int) {
	col = int(p.X / s.cellSize)
	row = int(p.Y / s.cellSize)

	if col < 0 {
		col = 0
	} else if col >= s.cols {
		col = s.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= s.rows {
		row = s.rows - 1
	}
	return col, row
}
