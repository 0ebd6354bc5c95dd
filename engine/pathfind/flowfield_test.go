package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcasim/planner/engine/maplib"
)

func TestNewFlowField_PointsTowardGoal(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("open", 5, 5, 1.0)
	ng := NewNavGrid(tm)
	ff := NewFlowField(ng, 4, 4)

	dx, dy := ff.Direction(0, 0)
	require.False(t, dx == 0 && dy == 0)
	assert.Greater(t, dx, 0.0)
	assert.Greater(t, dy, 0.0)
}

func TestNewFlowField_GoalOutOfBoundsIsAllUnreached(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("open", 3, 3, 1.0)
	ng := NewNavGrid(tm)
	ff := NewFlowField(ng, 99, 99)

	dx, dy := ff.Direction(0, 0)
	assert.Equal(t, 0.0, dx)
	assert.Equal(t, 0.0, dy)
}

func TestFlowField_Direction_OutOfBounds(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("open", 3, 3, 1.0)
	ng := NewNavGrid(tm)
	ff := NewFlowField(ng, 1, 1)

	dx, dy := ff.Direction(-1, 0)
	assert.Equal(t, 0.0, dx)
	assert.Equal(t, 0.0, dy)
}

func TestNewFlowField_UnreachableCellHasZeroDirection(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("island", 5, 5, 1.0)
	for y := 0; y < 5; y++ {
		tm.SetBlocked(2, y, true)
	}
	ng := NewNavGrid(tm)
	ff := NewFlowField(ng, 0, 0)

	dx, dy := ff.Direction(4, 4)
	assert.Equal(t, 0.0, dx)
	assert.Equal(t, 0.0, dy)
}
