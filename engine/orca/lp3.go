package orca

// LinearProgram3 recovers a best-effort velocity when LinearProgram2 fails to
// satisfy every line. Starting at beginIndex (the first line LinearProgram2
// could not satisfy), it walks the remaining agent-derived lines and, for
// each one more violated than the current tolerance, projects the
// already-seen agent lines into bisector half-planes around it and re-solves
// LinearProgram2 to push as far as possible into that line's feasible side.
// Obstacle lines (indices [0, nObst)) are carried through unmodified and
// never relaxed.
func LinearProgram3(lines []Line, nObst, beginIndex int, radius float64, v Vector2, cfg Config) Vector2 {
	dist := 0.0

	for i := beginIndex; i < len(lines); i++ {
		line := lines[i]
		if line.Violation(v) <= dist {
			continue
		}

		proj := make([]Line, 0, len(lines))
		proj = append(proj, lines[:nObst]...)

		for j := nObst; j < i; j++ {
			other := lines[j]
			denominator := line.Direction.Det(other.Direction)

			var point Vector2
			if abs(denominator) <= cfg.Epsilon {
				if line.Direction.Dot(other.Direction) > 0 {
					// Same direction: other is redundant given line.
					continue
				}
				point = line.Point.Add(other.Point).Scale(0.5)
			} else {
				t := other.Direction.Det(line.Point.Sub(other.Point)) / denominator
				point = line.Point.Add(line.Direction.Scale(t))
			}

			direction := other.Direction.Sub(line.Direction).Normalize()
			proj = append(proj, Line{Point: point, Direction: direction})
		}

		inwardNormal := Vector2{-line.Direction.Y, line.Direction.X}
		failIdx, candidate := LinearProgram2(proj, radius, inwardNormal, true, cfg)
		if failIdx >= len(proj) {
			v = candidate
		}
		// Degenerate case (failIdx < len(proj)): the projected sub-problem
		// itself has no solution. This should not occur for a well-formed
		// line list; v is left unchanged, but dist still advances to line's
		// current violation so the outer loop's <= dist skip stays correct
		// for lines considered afterward.
		dist = line.Violation(v)
	}

	return v
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
