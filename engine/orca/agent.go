package orca

// NeighborView is a neighbor agent's state as observed by the subject during
// one step. Callers are expected to have already trimmed the neighbor list
// to the K nearest within a sensing range (see engine/spatial.Grid.KNearest).
type NeighborView struct {
	Position Vector2
	Velocity Vector2
	Radius   float64
}

// AgentSnapshot is the immutable, step-entry state of one agent and its
// neighborhood. It is assembled fresh per agent per step; the only fields
// that persist across steps belong to the caller (typically an ECS
// component), not to this struct.
type AgentSnapshot struct {
	Position     Vector2
	Velocity     Vector2
	PrefVelocity Vector2
	Radius       float64
	MaxSpeed     float64

	// NeighborTau is the time horizon used against other agents (tau > 0).
	NeighborTau float64
	// ObstacleTau is the time horizon used against static obstacles (> 0).
	ObstacleTau float64

	Neighbors []NeighborView
	// ObstacleLines is an optional, pre-built list of obstacle ORCA lines
	// (e.g. from engine/obstacle.BuildLines). It always precedes the
	// agent-derived lines in the assembled OrcaLineList.
	ObstacleLines []Line
}

// Solver bundles the numeric tolerance used across the LP stages. It holds
// no other state, so a zero-value-free Solver built with New is safe to
// share across goroutines.
type Solver struct {
	cfg Config
}

// New returns a Solver configured with cfg.
func New(cfg Config) *Solver {
	return &Solver{cfg: cfg}
}

// ComputeNewVelocity assembles the agent's ORCA line list (obstacle lines
// first, then one line per neighbor) and runs LinearProgram2, falling back
// to LinearProgram3 on infeasibility. It never fails: the returned velocity
// always has magnitude at most snapshot.MaxSpeed (up to floating-point
// tolerance).
func (s *Solver) ComputeNewVelocity(snapshot AgentSnapshot, dt float64) Vector2 {
	nObst := len(snapshot.ObstacleLines)
	lines := make([]Line, 0, nObst+len(snapshot.Neighbors))
	lines = append(lines, snapshot.ObstacleLines...)

	for _, n := range snapshot.Neighbors {
		lines = append(lines, BuildAgentLine(
			snapshot.Position, snapshot.Velocity, snapshot.Radius,
			n.Position, n.Velocity, n.Radius,
			snapshot.NeighborTau, dt,
		))
	}

	failIndex, v := LinearProgram2(lines, snapshot.MaxSpeed, snapshot.PrefVelocity, false, s.cfg)
	if failIndex < len(lines) {
		v = LinearProgram3(lines, nObst, failIndex, snapshot.MaxSpeed, v, s.cfg)
	}
	return v
}

var defaultSolver = New(DefaultConfig())

// ComputeNewVelocity is the package-level convenience wrapper around a
// Solver built with DefaultConfig. Most callers, and most tests, don't need
// a custom epsilon.
func ComputeNewVelocity(snapshot AgentSnapshot, dt float64) Vector2 {
	return defaultSolver.ComputeNewVelocity(snapshot, dt)
}
