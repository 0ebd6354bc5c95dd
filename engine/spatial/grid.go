// Package spatial provides the neighbor discovery collaborator the ORCA core
// assumes but does not define: a k-nearest-within-range query over agent
// positions. Grid generalizes engine/pathfind.NavGrid's flat-slice-per-cell
// layout from integer tile coordinates to continuous positions bucketed by
// cell size, since agents move every tick and the grid must be rebuilt each
// tick rather than built once from a static tile map.
package spatial

import (
	"math"
	"sort"

	"github.com/orcasim/planner/engine/core"
)

// Entry is one agent's position as seen by the grid.
type Entry struct {
	ID       core.EntityID
	Position [2]float64
}

// Grid is a uniform-cell spatial index over 2-D positions.
type Grid struct {
	cellSize float64
	cells    map[[2]int][]Entry
}

// NewGrid creates an empty grid with the given cell size. cellSize should be
// on the order of a couple of agent diameters: too small and KNearest visits
// many empty cells, too large and each cell holds most of the population.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{cellSize: cellSize, cells: make(map[[2]int][]Entry)}
}

func (g *Grid) cellOf(pos [2]float64) [2]int {
	return [2]int{
		int(math.Floor(pos[0] / g.cellSize)),
		int(math.Floor(pos[1] / g.cellSize)),
	}
}

// Insert adds one entry to the grid.
func (g *Grid) Insert(id core.EntityID, pos [2]float64) {
	cell := g.cellOf(pos)
	g.cells[cell] = append(g.cells[cell], Entry{ID: id, Position: pos})
}

// Rebuild clears the grid and repopulates it from entries. Called once per
// tick before neighbor queries, since unlike a tile grid, agent positions
// churn every step.
func (g *Grid) Rebuild(entries []Entry) {
	for k := range g.cells {
		delete(g.cells, k)
	}
	for _, e := range entries {
		g.cells[g.cellOf(e.Position)] = append(g.cells[g.cellOf(e.Position)], e)
	}
}

// KNearest returns up to k entries nearest to pos, excluding exclude,
// restricted to maxRange, ordered by ascending distance. Ties are broken by
// EntityID so results are deterministic. It searches outward ring-by-ring
// from the query cell (the same expanding-frontier idea engine/pathfind's
// flow field uses for its BFS integration pass) until enough candidates have
// been gathered or the ring radius exceeds maxRange.
func (g *Grid) KNearest(pos [2]float64, k int, maxRange float64, exclude core.EntityID) []Entry {
	if k <= 0 {
		return nil
	}
	center := g.cellOf(pos)
	// maxRing covers every cell that could hold a point within maxRange of
	// pos, regardless of where pos falls inside its own cell. Every ring up
	// to it is visited unconditionally: an early exit on candidate count
	// would use Chebyshev ring order as a proxy for Euclidean distance,
	// which can miss a closer point one ring further out.
	maxRing := int(math.Ceil(maxRange/g.cellSize)) + 1

	var candidates []Entry
	for ring := 0; ring <= maxRing; ring++ {
		for dx := -ring; dx <= ring; dx++ {
			for dy := -ring; dy <= ring; dy++ {
				if abs(dx) != ring && abs(dy) != ring {
					continue // interior cells already visited at a smaller ring
				}
				cell := [2]int{center[0] + dx, center[1] + dy}
				for _, e := range g.cells[cell] {
					if e.ID == exclude {
						continue
					}
					if dist(pos, e.Position) <= maxRange {
						candidates = append(candidates, e)
					}
				}
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		di, dj := dist(pos, candidates[i].Position), dist(pos, candidates[j].Position)
		if di != dj {
			return di < dj
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

func dist(a, b [2]float64) float64 {
	dx, dy := a[0]-b[0], a[1]-b[1]
	return math.Sqrt(dx*dx + dy*dy)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
