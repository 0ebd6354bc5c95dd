package pathfind

import (
	"math"

	"github.com/orcasim/planner/engine/maplib"
)

// neighborDirs enumerates the eight-connected grid moves FindPath and
// NewFlowField both expand from a cell. Every ORCA agent shares one
// movement class (maplib.PassAll), so there is nothing here that varies
// per caller the way it would in a game with distinct ground/air/naval
// movement flags — ng.Passable's flag parameter still exists for that
// generality, but the grid search itself only ever needs one bit of it.
var neighborDirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// stepCost reports the cost of moving from (x,y) to (x+dx,y+dy), or ok=false
// if that move is blocked — either because the destination is impassable or,
// for a diagonal step, because it would cut through a blocked corner.
func stepCost(ng *NavGrid, x, y, dx, dy int) (cost float64, ok bool) {
	nx, ny := x+dx, y+dy
	if !ng.Passable(nx, ny, maplib.PassAll) {
		return 0, false
	}
	if dx != 0 && dy != 0 {
		if !ng.Passable(x+dx, y, maplib.PassAll) || !ng.Passable(x, y+dy, maplib.PassAll) {
			return 0, false
		}
	}
	cost = ng.Cost(nx, ny)
	if dx != 0 && dy != 0 {
		cost *= math.Sqrt2
	}
	return cost, true
}
