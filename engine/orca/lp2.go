package orca

// LinearProgram2 finds the optimal velocity inside the disk of radius rho
// that satisfies as many of lines[0:] as possible, processed in order. If
// directional is true, target is a unit direction and the objective is to
// maximize dot(v, target) (v walks the disk boundary); otherwise target is a
// preferred velocity and the objective is to minimize |v - target|.
//
// LinearProgram2 returns (len(lines), v) on full success, where v is
// globally optimal. On failure it returns (k, v) where k is the index of the
// first line that could not be satisfied and v is the last known-feasible
// candidate — the input LinearProgram3 needs to continue the recovery.
func LinearProgram2(lines []Line, radius float64, target Vector2, directional bool, cfg Config) (int, Vector2) {
	var v Vector2
	switch {
	case directional:
		v = target.Scale(radius)
	case target.LengthSq() > radius*radius:
		v = target.Normalize().Scale(radius)
	default:
		v = target
	}

	for i, line := range lines {
		if line.Violation(v) > 0 {
			prev := v
			candidate, ok := linearProgram1(lines, i, radius, target, directional, cfg.Epsilon)
			if !ok {
				return i, prev
			}
			v = candidate
		}
	}

	return len(lines), v
}
