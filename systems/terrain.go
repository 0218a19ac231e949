package systems

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// TerrainParams controls procedural terrain generation.
type TerrainParams struct {
	Scale       float64 // Noise frequency per cell
	Octaves     int     // FBM octaves
	WaterLevel  float64 // Cells with elevation below this are impassable
	MaxWeight   float64 // Weight of the roughest passable ground
	TrailWidth  float64 // Half-width of trail bands in noise units (0 = no trails)
	TrailWeight float64 // Weight of trail cells, usually below 1
}

// DefaultTerrainParams returns sensible defaults for terrain generation.
func DefaultTerrainParams() TerrainParams {
	return TerrainParams{
		Scale:       0.08,
		Octaves:     3,
		WaterLevel:  0.3,
		MaxWeight:   3,
		TrailWidth:  0.02,
		TrailWeight: 0.5,
	}
}

// GenerateTerrain fills a new w x h cost grid from OpenSimplex noise.
// Elevation below the water level is impassable; higher ground is
// progressively harder to cross. Trails follow the zero crossings of a
// second noise field and are cheaper than open ground.
func GenerateTerrain(w, h int, cellSize float32, seed int64, p TerrainParams) *CostGrid {
	grid := NewCostGrid(w, h, cellSize)
	elevation := opensimplex.NewNormalized(seed)
	trails := opensimplex.NewNormalized(seed ^ 0x5f3759df)

	octaves := p.Octaves
	if octaves < 1 {
		octaves = 1
	}
	maxW := math.Max(p.MaxWeight, 1)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			e := fbm(elevation, float64(x)*p.Scale, float64(y)*p.Scale, octaves)
			if e < p.WaterLevel {
				grid.Set(Cell{x, y}, Impassable)
				continue
			}

			// Map remaining elevation onto [1, maxW].
			t := (e - p.WaterLevel) / math.Max(1-p.WaterLevel, 1e-6)
			weight := 1 + t*(maxW-1)

			if p.TrailWidth > 0 {
				tr := trails.Eval2(float64(x)*p.Scale*0.5, float64(y)*p.Scale*0.5)
				if math.Abs(tr-0.5) < p.TrailWidth {
					weight = p.TrailWeight
				}
			}
			grid.Set(Cell{x, y}, weight)
		}
	}
	return grid
}

// fbm sums octaves of normalized noise and renormalizes to [0, 1].
func fbm(n opensimplex.Noise, x, y float64, octaves int) float64 {
	var sum, amp, norm float64 = 0, 1, 0
	freq := 1.0
	for i := 0; i < octaves; i++ {
		sum += n.Eval2(x*freq, y*freq) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}
