// Package obstacle answers the question the ORCA core leaves external:
// where static obstacle ORCA lines come from. It extracts line segments from
// the boundary of blocked tiles in a maplib.TileMap and turns each nearby
// segment into a factor-1 ORCA line via engine/orca.BuildObstacleLine.
package obstacle

import (
	"math"

	"github.com/orcasim/planner/engine/maplib"
	"github.com/orcasim/planner/engine/orca"
)

// Segment is a static obstacle edge in world space.
type Segment struct {
	A, B orca.Vector2
}

// ExtractSegments walks every blocked tile in tm and emits one segment per
// boundary edge that borders a passable (or off-map) neighbor — the tile
// grid's outline, not its interior faces.
func ExtractSegments(tm *maplib.TileMap) []Segment {
	cs := tm.CellSize
	if cs <= 0 {
		cs = 1
	}
	var segs []Segment
	blocked := func(x, y int) bool {
		return !tm.IsPassable(x, y, maplib.PassAll)
	}
	corner := func(x, y int) orca.Vector2 {
		return orca.Vector2{X: float64(x) * cs, Y: float64(y) * cs}
	}

	for y := 0; y < tm.Height; y++ {
		for x := 0; x < tm.Width; x++ {
			if !blocked(x, y) {
				continue
			}
			nw, ne := corner(x, y), corner(x+1, y)
			sw, se := corner(x, y+1), corner(x+1, y+1)

			if !blocked(x, y-1) { // north edge exposed
				segs = append(segs, Segment{nw, ne})
			}
			if !blocked(x, y+1) { // south edge exposed
				segs = append(segs, Segment{sw, se})
			}
			if !blocked(x-1, y) { // west edge exposed
				segs = append(segs, Segment{nw, sw})
			}
			if !blocked(x+1, y) { // east edge exposed
				segs = append(segs, Segment{ne, se})
			}
		}
	}
	return segs
}

// closestPoint returns the closest point on segment s to p.
func closestPoint(s Segment, p orca.Vector2) orca.Vector2 {
	edge := s.B.Sub(s.A)
	lenSq := edge.LengthSq()
	if lenSq == 0 {
		return s.A
	}
	t := p.Sub(s.A).Dot(edge) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return s.A.Add(edge.Scale(t))
}

// BuildLines returns the obstacle ORCA lines a subject agent owes every
// segment within radius+lookaheadRange of it, in an arbitrary but stable
// order (callers place these before any agent-derived lines).
func BuildLines(selfPos, selfVel orca.Vector2, selfRadius float64, segments []Segment, tauObst, lookaheadRange, dt float64) []orca.Line {
	limit := selfRadius + lookaheadRange
	var lines []orca.Line
	for _, seg := range segments {
		pt := closestPoint(seg, selfPos)
		if math.Hypot(pt.X-selfPos.X, pt.Y-selfPos.Y) > limit {
			continue
		}
		lines = append(lines, orca.BuildObstacleLine(selfPos, selfVel, selfRadius, pt, tauObst, dt))
	}
	return lines
}
