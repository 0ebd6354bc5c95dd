package spatial

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcasim/planner/engine/core"
)

// bruteForceKNearest recomputes KNearest by scanning every entry directly,
// as an oracle for Property P8 (spatial fidelity): the grid's ring-expanding
// search must never disagree with brute force distance sorting.
func bruteForceKNearest(entries []Entry, pos [2]float64, k int, maxRange float64, exclude core.EntityID) []Entry {
	var candidates []Entry
	for _, e := range entries {
		if e.ID == exclude {
			continue
		}
		if dist(pos, e.Position) <= maxRange {
			candidates = append(candidates, e)
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

func TestGrid_KNearest_MatchesBruteForce(t *testing.T) {
	t.Parallel()

	g := NewGrid(2.0)
	var entries []Entry
	// A deliberately irregular scatter, including clusters that straddle
	// cell boundaries, since that's where a ring-search bug would show up.
	positions := [][2]float64{
		{0, 0}, {1.9, 0}, {2.1, 0}, {-1.9, 0}, {0, 1.9}, {0, -2.1},
		{5, 5}, {5.1, 5.1}, {10, 10}, {-10, -10}, {3, 3}, {3.5, 3.5},
		{0.1, 0.1}, {-0.1, -0.1}, {7, -7}, {-7, 7},
	}
	for i, p := range positions {
		entries = append(entries, Entry{ID: core.EntityID(i + 1), Position: p})
	}
	g.Rebuild(entries)

	queries := []struct {
		pos      [2]float64
		k        int
		maxRange float64
		exclude  core.EntityID
	}{
		{[2]float64{0, 0}, 3, 5, core.EntityID(1)},
		{[2]float64{2, 0}, 5, 3, 0},
		{[2]float64{0, 0}, 100, 4, 0},
		{[2]float64{6, 6}, 2, 10, 0},
		{[2]float64{0, 0}, 4, 0.05, 0},
	}

	for _, q := range queries {
		got := g.KNearest(q.pos, q.k, q.maxRange, q.exclude)
		want := bruteForceKNearest(entries, q.pos, q.k, q.maxRange, q.exclude)
		require.Equal(t, len(want), len(got), "query %+v", q)
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID, "query %+v index %d", q, i)
		}
	}
}

func TestGrid_KNearest_ExcludesSelf(t *testing.T) {
	t.Parallel()

	g := NewGrid(1.0)
	g.Rebuild([]Entry{
		{ID: 1, Position: [2]float64{0, 0}},
		{ID: 2, Position: [2]float64{0.5, 0}},
	})
	got := g.KNearest([2]float64{0, 0}, 5, 10, core.EntityID(1))
	require.Len(t, got, 1)
	assert.Equal(t, core.EntityID(2), got[0].ID)
}

func TestGrid_KNearest_EmptyGrid(t *testing.T) {
	t.Parallel()

	g := NewGrid(1.0)
	got := g.KNearest([2]float64{0, 0}, 5, 10, 0)
	assert.Empty(t, got)
}

func TestGrid_KNearest_ZeroKReturnsNil(t *testing.T) {
	t.Parallel()

	g := NewGrid(1.0)
	g.Insert(1, [2]float64{0, 0})
	assert.Nil(t, g.KNearest([2]float64{0, 0}, 0, 10, 0))
}

func TestGrid_Insert_MatchesRebuild(t *testing.T) {
	t.Parallel()

	viaInsert := NewGrid(1.5)
	viaInsert.Insert(1, [2]float64{0, 0})
	viaInsert.Insert(2, [2]float64{1, 1})

	viaRebuild := NewGrid(1.5)
	viaRebuild.Rebuild([]Entry{
		{ID: 1, Position: [2]float64{0, 0}},
		{ID: 2, Position: [2]float64{1, 1}},
	})

	got := viaInsert.KNearest([2]float64{0, 0}, 2, 10, 0)
	want := viaRebuild.KNearest([2]float64{0, 0}, 2, 10, 0)
	assert.Equal(t, want, got)
}

func TestGrid_Rebuild_ClearsPreviousEntries(t *testing.T) {
	t.Parallel()

	g := NewGrid(1.0)
	g.Insert(1, [2]float64{0, 0})
	g.Rebuild([]Entry{{ID: 2, Position: [2]float64{0, 0}}})

	got := g.KNearest([2]float64{0, 0}, 10, 10, 0)
	require.Len(t, got, 1)
	assert.Equal(t, core.EntityID(2), got[0].ID)
}

func TestDist(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 5, dist([2]float64{0, 0}, [2]float64{3, 4}), 1e-12)
	assert.InDelta(t, 0, math.Abs(dist([2]float64{1, 1}, [2]float64{1, 1})), 1e-12)
}
