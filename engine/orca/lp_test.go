package orca

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearProgram2_Unconstrained(t *testing.T) {
	t.Parallel()

	// With no lines at all, the optimum is just the preferred velocity
	// clamped into the speed disk.
	target := Vector2{X: 1, Y: 0}
	failIdx, v := LinearProgram2(nil, 2.0, target, false, DefaultConfig())
	assert.Equal(t, 0, failIdx)
	assert.Equal(t, target, v)
}

func TestLinearProgram2_ClampsToDisk(t *testing.T) {
	t.Parallel()

	target := Vector2{X: 10, Y: 0}
	failIdx, v := LinearProgram2(nil, 2.0, target, false, DefaultConfig())
	assert.Equal(t, 0, failIdx)
	assert.InDelta(t, 2.0, v.Length(), 1e-9)
	assert.InDelta(t, 2.0, v.X, 1e-9)
}

func TestLinearProgram2_SingleConstraint(t *testing.T) {
	t.Parallel()

	// One line cutting off the right half-plane (feasible side: x <= 0)
	// with direction pointing straight up.
	line := Line{Point: Vector2{X: 0, Y: 0}, Direction: Vector2{X: 0, Y: 1}}
	target := Vector2{X: 1, Y: 0}

	failIdx, v := LinearProgram2([]Line{line}, 2.0, target, false, DefaultConfig())
	require.Equal(t, 1, failIdx, "the single line should be satisfiable")
	assert.LessOrEqual(t, line.Violation(v), 1e-9)
	// Optimum should sit on the line itself (x=0), the closest feasible
	// point to (1,0).
	assert.InDelta(t, 0, v.X, 1e-6)
}

func TestLinearProgram2_InfeasibleReportsFailIndex(t *testing.T) {
	t.Parallel()

	// Two parallel, opposite-facing lines with no overlap: infeasible for
	// any velocity within the disk that satisfies both, forcing LP2 to
	// report failure at the second line.
	l1 := Line{Point: Vector2{X: -0.1, Y: 0}, Direction: Vector2{X: 0, Y: 1}} // feasible: x <= -0.1
	l2 := Line{Point: Vector2{X: 0.1, Y: 0}, Direction: Vector2{X: 0, Y: -1}} // feasible: x >= 0.1
	target := Vector2{X: 0, Y: 0}

	failIdx, _ := LinearProgram2([]Line{l1, l2}, 2.0, target, false, DefaultConfig())
	assert.Equal(t, 1, failIdx)
}

func TestLinearProgram3_RecoversBestEffort(t *testing.T) {
	t.Parallel()

	l1 := Line{Point: Vector2{X: -0.1, Y: 0}, Direction: Vector2{X: 0, Y: 1}}
	l2 := Line{Point: Vector2{X: 0.1, Y: 0}, Direction: Vector2{X: 0, Y: -1}}
	lines := []Line{l1, l2}
	target := Vector2{X: 0, Y: 0}

	cfg := DefaultConfig()
	failIdx, v := LinearProgram2(lines, 2.0, target, false, cfg)
	require.Less(t, failIdx, len(lines))

	recovered := LinearProgram3(lines, 0, failIdx, 2.0, v, cfg)
	assert.LessOrEqual(t, recovered.Length(), 2.0+1e-9)
	assert.False(t, math.IsNaN(recovered.X) || math.IsNaN(recovered.Y))
}

func TestLinearProgram3_ObstacleLinesNeverRelaxed(t *testing.T) {
	t.Parallel()

	// nObst=1: the first line is a hard obstacle constraint that must stay
	// satisfied by any recovered velocity, even though the agent lines that
	// follow are mutually infeasible (x >= 0.6 and x <= 0.4 at once).
	obstacle := Line{Point: Vector2{X: -0.5, Y: 0}, Direction: Vector2{X: 0, Y: 1}}  // feasible: x <= -0.5
	a1 := Line{Point: Vector2{X: 0.6, Y: 0}, Direction: Vector2{X: 0, Y: -1}}        // feasible: x >= 0.6
	a2 := Line{Point: Vector2{X: 0.4, Y: 0}, Direction: Vector2{X: 0, Y: 1}}         // feasible: x <= 0.4
	lines := []Line{obstacle, a1, a2}
	target := Vector2{X: 0, Y: 0}

	cfg := DefaultConfig()
	failIdx, v := LinearProgram2(lines, 2.0, target, false, cfg)
	require.Less(t, failIdx, len(lines))

	recovered := LinearProgram3(lines, 1, failIdx, 2.0, v, cfg)
	assert.LessOrEqual(t, obstacle.Violation(recovered), 1e-6)
}
