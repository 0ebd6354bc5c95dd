package obstacle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcasim/planner/engine/maplib"
	"github.com/orcasim/planner/engine/orca"
)

func TestExtractSegments_SingleBlockedTile(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("test", 5, 5, 1.0)
	tm.SetBlocked(2, 2, true)

	segs := ExtractSegments(tm)
	// An isolated blocked tile exposes all four of its edges.
	require.Len(t, segs, 4)
}

func TestExtractSegments_AdjacentBlockedTilesShareNoInteriorEdge(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("test", 5, 5, 1.0)
	tm.SetBlocked(2, 2, true)
	tm.SetBlocked(3, 2, true)

	segs := ExtractSegments(tm)
	// Two adjacent blocked tiles form a 2x1 block: 6 exposed edges total
	// (the shared interior edge between them is suppressed on both sides).
	assert.Len(t, segs, 6)
}

func TestExtractSegments_EmptyMapHasNoSegments(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("test", 5, 5, 1.0)
	assert.Empty(t, ExtractSegments(tm))
}

func TestClosestPoint_Endpoints(t *testing.T) {
	t.Parallel()

	seg := Segment{A: orca.Vector2{X: 0, Y: 0}, B: orca.Vector2{X: 10, Y: 0}}

	mid := closestPoint(seg, orca.Vector2{X: 5, Y: 3})
	assert.InDelta(t, 5, mid.X, 1e-9)
	assert.InDelta(t, 0, mid.Y, 1e-9)

	beforeStart := closestPoint(seg, orca.Vector2{X: -5, Y: 1})
	assert.Equal(t, seg.A, beforeStart)

	pastEnd := closestPoint(seg, orca.Vector2{X: 15, Y: 1})
	assert.Equal(t, seg.B, pastEnd)
}

func TestClosestPoint_DegenerateSegment(t *testing.T) {
	t.Parallel()

	seg := Segment{A: orca.Vector2{X: 2, Y: 2}, B: orca.Vector2{X: 2, Y: 2}}
	assert.Equal(t, seg.A, closestPoint(seg, orca.Vector2{X: 10, Y: 10}))
}

func TestBuildLines_OnlyWithinLookaheadRange(t *testing.T) {
	t.Parallel()

	segments := []Segment{
		{A: orca.Vector2{X: 2, Y: -5}, B: orca.Vector2{X: 2, Y: 5}},   // close
		{A: orca.Vector2{X: 50, Y: -5}, B: orca.Vector2{X: 50, Y: 5}}, // far
	}
	lines := BuildLines(orca.Vector2{X: 0, Y: 0}, orca.Vector2{X: 1, Y: 0}, 0.5, segments, 2.0, 3.0, 1.0/60.0)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].IsUnit(1e-9))
}

func TestBuildLines_NoSegmentsReturnsEmpty(t *testing.T) {
	t.Parallel()

	lines := BuildLines(orca.Vector2{X: 0, Y: 0}, orca.Vector2{X: 1, Y: 0}, 0.5, nil, 2.0, 3.0, 1.0/60.0)
	assert.Empty(t, lines)
}
