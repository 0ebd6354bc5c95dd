package orca

import "math"

// lineParams is the geometry a single ORCA line is derived from: a subject
// disk and a "neighbor" disk (a real agent, or a static obstacle collapsed to
// its nearest point with zero radius and zero velocity).
type lineParams struct {
	selfPos, selfVel Vector2
	selfRadius       float64
	otherPos, otherVel Vector2
	otherRadius        float64
	horizon            float64 // tau (agent) or tauObst (obstacle)
	dt                 float64 // time step, used only in the overlap case
	factor             float64 // shared-responsibility factor: 0.5 agent-agent, 1.0 vs obstacle
}

// buildLine derives one ORCA half-plane from the truncated velocity obstacle
// geometry described in SPEC_FULL.md §4.1. It is shared by BuildAgentLine and
// BuildObstacleLine, which differ only in the responsibility factor and in
// whether "other" is a moving agent or a motionless obstacle point.
func buildLine(p lineParams) Line {
	relPos := p.otherPos.Sub(p.selfPos)  // Δp
	relVel := p.selfVel.Sub(p.otherVel)  // Δv
	distSq := relPos.LengthSq()          // d²
	combinedRadius := p.selfRadius + p.otherRadius
	combinedRadiusSq := combinedRadius * combinedRadius

	var u Vector2
	var direction Vector2

	if distSq > combinedRadiusSq {
		// Case A: not currently overlapping.
		invTau := 1.0 / p.horizon
		w := relVel.Sub(relPos.Scale(invTau))
		wLengthSq := w.LengthSq()
		c := w.Dot(relPos)

		if c < 0 && c*c > combinedRadiusSq*wLengthSq {
			// A1: cut-off projection.
			wLength := math.Sqrt(wLengthSq)
			unitW := w.Scale(1.0 / wLength)
			direction = unitW.Perp()
			u = unitW.Scale(combinedRadius/p.horizon - wLength)
		} else {
			// A2: leg projection.
			leg := math.Sqrt(distSq - combinedRadiusSq)
			if relPos.Det(w) > 0 {
				// Left leg.
				direction = Vector2{
					relPos.X*leg - relPos.Y*combinedRadius,
					relPos.X*combinedRadius + relPos.Y*leg,
				}.Scale(1.0 / distSq)
			} else {
				// Right leg.
				direction = Vector2{
					relPos.X*leg + relPos.Y*combinedRadius,
					-relPos.X*combinedRadius + relPos.Y*leg,
				}.Scale(-1.0 / distSq)
			}
			u = direction.Scale(relVel.Dot(direction)).Sub(relVel)
		}
	} else {
		// Case B: already overlapping; must be resolved within one time step.
		invDt := 1.0 / p.dt
		w := relVel.Sub(relPos.Scale(invDt))
		wLength := w.Length()
		unitW := w.Scale(1.0 / wLength)
		direction = unitW.Perp()
		u = unitW.Scale(combinedRadius/p.dt - wLength)
	}

	return Line{
		Point:     p.selfVel.Add(u.Scale(p.factor)),
		Direction: direction,
	}
}

// BuildAgentLine constructs the ORCA half-plane a subject agent owes a
// neighboring agent, using the reciprocal 0.5 responsibility factor. tau is
// the neighbor time horizon; dt is the simulation time step used only when
// the two disks already overlap.
func BuildAgentLine(selfPos, selfVel Vector2, selfRadius float64, otherPos, otherVel Vector2, otherRadius, tau, dt float64) Line {
	return buildLine(lineParams{
		selfPos: selfPos, selfVel: selfVel, selfRadius: selfRadius,
		otherPos: otherPos, otherVel: otherVel, otherRadius: otherRadius,
		horizon: tau, dt: dt, factor: 0.5,
	})
}

// BuildObstacleLine constructs the ORCA half-plane a subject agent owes a
// static obstacle point (the closest point on an obstacle segment, treated as
// a zero-radius, zero-velocity neighbor). The obstacle takes no
// responsibility, so the full displacement factor is 1.0. tauObst is the
// obstacle time horizon.
func BuildObstacleLine(selfPos, selfVel Vector2, selfRadius float64, obstaclePoint Vector2, tauObst, dt float64) Line {
	return buildLine(lineParams{
		selfPos: selfPos, selfVel: selfVel, selfRadius: selfRadius,
		otherPos: obstaclePoint, otherVel: Vector2{}, otherRadius: 0,
		horizon: tauObst, dt: dt, factor: 1.0,
	})
}
