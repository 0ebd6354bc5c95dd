package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orcasim/planner/engine/maplib"
)

func TestNewNavGrid_CostsByTerrain(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("terrain", 3, 1, 1.0)
	tm.SetTerrain(1, 0, 1, 0, maplib.TerrainRoad)
	ng := NewNavGrid(tm)

	assert.InDelta(t, 1.0, ng.Cost(0, 0), 1e-9)
	assert.InDelta(t, 0.7, ng.Cost(1, 0), 1e-9)
}

func TestNewNavGrid_BlockedTileHasZeroCost(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("blocked", 3, 1, 1.0)
	tm.SetBlocked(1, 0, true)
	ng := NewNavGrid(tm)

	assert.Equal(t, 0.0, ng.Cost(1, 0))
	assert.False(t, ng.Passable(1, 0, maplib.PassAll))
}

func TestNavGrid_SetBlockedAndSetCost(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("mutable", 3, 3, 1.0)
	ng := NewNavGrid(tm)

	ng.SetBlocked(1, 1)
	assert.False(t, ng.Passable(1, 1, maplib.PassAll))

	ng.SetCost(2, 2, 3.5)
	assert.InDelta(t, 3.5, ng.Cost(2, 2), 1e-9)
}

func TestNavGrid_OutOfBoundsIsImpassable(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("bounds", 2, 2, 1.0)
	ng := NewNavGrid(tm)

	assert.False(t, ng.Passable(-1, 0, maplib.PassAll))
	assert.Equal(t, 0.0, ng.Cost(5, 5))
}

func TestNavGrid_Refresh(t *testing.T) {
	t.Parallel()

	tm := maplib.NewTileMap("refresh", 2, 2, 1.0)
	ng := NewNavGrid(tm)
	require := assert.New(t)
	require.True(ng.Passable(0, 0, maplib.PassAll))

	tm.SetBlocked(0, 0, true)
	ng.Refresh(tm)
	require.False(ng.Passable(0, 0, maplib.PassAll))
}
