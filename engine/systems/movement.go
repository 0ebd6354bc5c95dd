package systems

import (
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/orcasim/planner/engine/core"
	"github.com/orcasim/planner/engine/obstacle"
	"github.com/orcasim/planner/engine/orca"
	"github.com/orcasim/planner/engine/spatial"
)

// MovementSystem computes each agent's ORCA-avoiding velocity every tick and
// commits positions under the double-buffer discipline: no agent's step
// observes another agent's already-updated Velocity. It replaces the donor
// engine's naive separation-force pathfind.Steer with the provable ORCA
// solver in engine/orca, fanned out across a bounded worker pool since the
// per-agent computation is embarrassingly parallel within one step.
type MovementSystem struct {
	// CellSize sizes the spatial grid rebuilt each tick; roughly a couple
	// of agent diameters is a good default.
	CellSize float64
	// SenseRange bounds how far a neighbor query looks for other agents.
	SenseRange float64
	// MaxNeighbors caps how many of the nearest agents within SenseRange
	// are turned into ORCA lines.
	MaxNeighbors int
	// ObstacleSegments are the static obstacle edges extracted once from
	// the map; nil means no obstacle ORCA lines are built.
	ObstacleSegments []obstacle.Segment
	// LookaheadRange bounds how far an obstacle segment can be from an
	// agent and still produce a line for it.
	LookaheadRange float64

	Logger *slog.Logger

	grid *spatial.Grid
}

func (s *MovementSystem) Priority() int { return 20 }

type agentState struct {
	id  core.EntityID
	pos *core.Position
	kin *core.Kinematic
}

// Update rebuilds the neighbor grid, fans ComputeNewVelocity out across a
// bounded worker pool, then commits every agent's new velocity and position
// in a second pass so that no agent's step-N computation can observe another
// agent's step-N velocity write.
func (s *MovementSystem) Update(w *core.World, dt float64) {
	if s.grid == nil {
		cellSize := s.CellSize
		if cellSize <= 0 {
			cellSize = 1
		}
		s.grid = spatial.NewGrid(cellSize)
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}

	ids := w.Query(core.CompPosition, core.CompKinematic)
	agents := make([]agentState, len(ids))
	byID := make(map[core.EntityID]int, len(ids))
	entries := make([]spatial.Entry, len(ids))
	for i, id := range ids {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		kin := w.Get(id, core.CompKinematic).(*core.Kinematic)
		agents[i] = agentState{id: id, pos: pos, kin: kin}
		byID[id] = i
		entries[i] = spatial.Entry{ID: id, Position: [2]float64{pos.X, pos.Y}}
	}
	s.grid.Rebuild(entries)

	results := make([]orca.Vector2, len(agents))

	g := new(errgroup.Group)
	g.SetLimit(max(1, runtime.GOMAXPROCS(0)))
	for i := range agents {
		i := i
		g.Go(func() error {
			results[i] = s.computeOne(agents[i], agents, byID, dt)
			return nil
		})
	}
	_ = g.Wait() // computeOne never returns an error; g.Wait can't fail here

	for i, a := range agents {
		v := results[i]
		a.kin.NewVelocity = [2]float64{v.X, v.Y}
	}
	for _, a := range agents {
		a.kin.Velocity = a.kin.NewVelocity
		a.pos.X += a.kin.Velocity[0] * dt
		a.pos.Y += a.kin.Velocity[1] * dt
		if a.kin.Velocity[0] != 0 || a.kin.Velocity[1] != 0 {
			a.pos.Facing = math.Atan2(a.kin.Velocity[1], a.kin.Velocity[0])
		}
	}
}

// computeOne assembles one agent's AgentSnapshot from the step-entry
// agents/byID slices (read-only for the duration of the fan-out) and runs
// the core solver. It touches no shared mutable state.
func (s *MovementSystem) computeOne(a agentState, agents []agentState, byID map[core.EntityID]int, dt float64) orca.Vector2 {
	pos := orca.Vector2{X: a.pos.X, Y: a.pos.Y}
	vel := orca.Vector2{X: a.kin.Velocity[0], Y: a.kin.Velocity[1]}
	pref := orca.Vector2{X: a.kin.PrefVelocity[0], Y: a.kin.PrefVelocity[1]}

	nearby := s.grid.KNearest([2]float64{a.pos.X, a.pos.Y}, s.MaxNeighbors, s.SenseRange, a.id)
	neighbors := make([]orca.NeighborView, 0, len(nearby))
	for _, e := range nearby {
		idx, ok := byID[e.ID]
		if !ok {
			continue // stale entry from a rebuild race; skip rather than fail
		}
		other := agents[idx]
		if math.Hypot(other.pos.X-a.pos.X, other.pos.Y-a.pos.Y) < orca.DefaultEpsilon {
			s.Logger.Warn("skipping co-located neighbor", "agent", a.id, "neighbor", other.id)
			continue
		}
		neighbors = append(neighbors, orca.NeighborView{
			Position: orca.Vector2{X: other.pos.X, Y: other.pos.Y},
			Velocity: orca.Vector2{X: other.kin.Velocity[0], Y: other.kin.Velocity[1]},
			Radius:   other.kin.Radius,
		})
	}

	var obstacleLines []orca.Line
	if len(s.ObstacleSegments) > 0 {
		obstacleLines = obstacle.BuildLines(pos, vel, a.kin.Radius, s.ObstacleSegments, a.kin.ObstacleTau, s.LookaheadRange, dt)
	}

	snapshot := orca.AgentSnapshot{
		Position:      pos,
		Velocity:      vel,
		PrefVelocity:  pref,
		Radius:        a.kin.Radius,
		MaxSpeed:      a.kin.MaxSpeed,
		NeighborTau:   a.kin.NeighborTau,
		ObstacleTau:   a.kin.ObstacleTau,
		Neighbors:     neighbors,
		ObstacleLines: obstacleLines,
	}
	return orca.ComputeNewVelocity(snapshot, dt)
}
