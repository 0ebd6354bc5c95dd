package systems

import (
	"log/slog"
	"math"

	"github.com/orcasim/planner/engine/core"
	"github.com/orcasim/planner/engine/pathfind"
)

// Goal is one agent's current destination and cruise speed. GoalSystem reads
// and writes these; nothing else should mutate a Goal once set.
type Goal struct {
	TileX, TileY int
	Speed        float64
	active       bool
}

func (g *Goal) Type() core.ComponentType { return core.CompGoal }

// GoalSystem replaces the donor engine's build-order AI with the much
// simpler policy an ORCA simulation actually needs: turn each agent's goal
// tile into a preferred velocity every tick, replanning the underlying
// waypoint path only when the agent has drifted off it or the map has
// changed. It drives engine/pathfind's A* and line-of-sight smoothing, then
// converts each waypoint into a unit-speed PrefVelocity.
//
// When enough agents share the same goal tile, per-agent A* stops paying
// off: every one of them would replan the same route. GoalSystem instead
// builds one pathfind.FlowField for that tile and has every agent heading
// there read its direction field directly, the same crowd-flow trick
// flowfield.go's BFS integration pass exists for.
type GoalSystem struct {
	NavGrid *pathfind.NavGrid
	// ReplanEvery bounds how many ticks pass between forced replans of an
	// agent that has not reached its goal, in case the map has changed.
	ReplanEvery int
	// WaypointRadius is how close (world units) an agent must get to a
	// waypoint before advancing to the next one.
	WaypointRadius float64
	// FlowFieldThreshold is how many agents must share a goal tile before
	// GoalSystem builds a shared FlowField for it instead of planning A*
	// routes per agent. Zero disables flow-field routing entirely.
	FlowFieldThreshold int

	Logger *slog.Logger

	tick       int
	flowFields map[[2]int]*pathfind.FlowField
}

// flowFieldFor returns the cached FlowField toward (tileX, tileY), building
// it on first use. The field is never invalidated on its own; callers that
// change the map should replace the GoalSystem's NavGrid, which starts a
// fresh cache.
func (s *GoalSystem) flowFieldFor(tileX, tileY int) *pathfind.FlowField {
	key := [2]int{tileX, tileY}
	if ff, ok := s.flowFields[key]; ok {
		return ff
	}
	if s.flowFields == nil {
		s.flowFields = make(map[[2]int]*pathfind.FlowField)
	}
	ff := pathfind.NewFlowField(s.NavGrid, tileX, tileY)
	s.flowFields[key] = ff
	return ff
}

func (s *GoalSystem) Priority() int { return 10 } // runs before MovementSystem

// SetGoal assigns a new goal tile to id, clearing any previous path so the
// next Update call replans from scratch.
func SetGoal(w *core.World, id core.EntityID, tileX, tileY int, speed float64) {
	kin, _ := w.Get(id, core.CompKinematic).(*core.Kinematic)
	if kin == nil {
		return
	}
	kin.Path = nil
	kin.PathIdx = 0
	var goal *Goal
	if c := w.Get(id, core.CompGoal); c != nil {
		goal = c.(*Goal)
	} else {
		goal = &Goal{}
		w.Attach(id, goal)
	}
	goal.TileX, goal.TileY = tileX, tileY
	goal.Speed = speed
	goal.active = true
}

// Stop clears an agent's goal, leaving its preferred velocity at zero so
// MovementSystem lets it coast to a stop under ORCA.
func Stop(w *core.World, id core.EntityID) {
	kin, _ := w.Get(id, core.CompKinematic).(*core.Kinematic)
	if kin != nil {
		kin.PrefVelocity = [2]float64{0, 0}
		kin.Path = nil
		kin.PathIdx = 0
	}
	if c := w.Get(id, core.CompGoal); c != nil {
		c.(*Goal).active = false
	}
}

func (s *GoalSystem) Update(w *core.World, dt float64) {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.WaypointRadius <= 0 {
		s.WaypointRadius = 0.5
	}
	s.tick++

	ids := w.Query(core.CompPosition, core.CompKinematic, core.CompGoal)

	goalCounts := make(map[[2]int]int, len(ids))
	if s.FlowFieldThreshold > 0 {
		for _, id := range ids {
			if goal, ok := w.Get(id, core.CompGoal).(*Goal); ok && goal.active {
				goalCounts[[2]int{goal.TileX, goal.TileY}]++
			}
		}
	}

	for _, id := range ids {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		kin := w.Get(id, core.CompKinematic).(*core.Kinematic)
		goal := w.Get(id, core.CompGoal).(*Goal)
		if !goal.active {
			kin.PrefVelocity = [2]float64{0, 0}
			continue
		}

		cs := 1.0
		if s.NavGrid != nil {
			cs = navGridCellSize(s.NavGrid)
		}

		if s.NavGrid != nil && s.FlowFieldThreshold > 0 &&
			goalCounts[[2]int{goal.TileX, goal.TileY}] >= s.FlowFieldThreshold {
			sx, sy := int(pos.X/cs), int(pos.Y/cs)
			ff := s.flowFieldFor(goal.TileX, goal.TileY)
			fdx, fdy := ff.Direction(sx, sy)
			if fdx != 0 || fdy != 0 {
				speed := goal.Speed
				if speed <= 0 || speed > kin.MaxSpeed {
					speed = kin.MaxSpeed
				}
				kin.PrefVelocity = [2]float64{fdx * speed, fdy * speed}
				continue
			}
			if sx == goal.TileX && sy == goal.TileY {
				kin.PrefVelocity = [2]float64{0, 0}
				goal.active = false
				continue
			}
			// FlowField has no direction here (unreached cell); fall back
			// to per-agent A* below rather than leaving the agent stuck.
		}

		needsPlan := len(kin.Path) == 0 ||
			(s.ReplanEvery > 0 && s.tick%s.ReplanEvery == 0)
		if needsPlan && s.NavGrid != nil {
			sx, sy := int(pos.X/cs), int(pos.Y/cs)
			raw := pathfind.FindPath(s.NavGrid, sx, sy, goal.TileX, goal.TileY)
			if raw == nil {
				s.Logger.Warn("no path to goal", "agent", id, "goal_x", goal.TileX, "goal_y", goal.TileY)
				kin.PrefVelocity = [2]float64{0, 0}
				continue
			}
			smooth := pathfind.SmoothPath(s.NavGrid, raw)
			kin.Path = make([]core.TilePos, len(smooth))
			for i, p := range smooth {
				kin.Path[i] = core.TilePos{X: p.X, Y: p.Y}
			}
			kin.PathIdx = 0
		}

		if len(kin.Path) == 0 {
			kin.PrefVelocity = [2]float64{0, 0}
			continue
		}

		wp := kin.Path[kin.PathIdx]
		wx, wy := (float64(wp.X)+0.5)*cs, (float64(wp.Y)+0.5)*cs
		dx, dy := wx-pos.X, wy-pos.Y
		d := math.Hypot(dx, dy)

		if d < s.WaypointRadius {
			if kin.PathIdx < len(kin.Path)-1 {
				kin.PathIdx++
				wp = kin.Path[kin.PathIdx]
				wx, wy = (float64(wp.X)+0.5)*cs, (float64(wp.Y)+0.5)*cs
				dx, dy = wx-pos.X, wy-pos.Y
				d = math.Hypot(dx, dy)
			} else {
				kin.PrefVelocity = [2]float64{0, 0}
				w.Get(id, core.CompGoal).(*Goal).active = false
				continue
			}
		}

		speed := goal.Speed
		if speed <= 0 || speed > kin.MaxSpeed {
			speed = kin.MaxSpeed
		}
		if d > 1e-9 {
			kin.PrefVelocity = [2]float64{dx / d * speed, dy / d * speed}
		} else {
			kin.PrefVelocity = [2]float64{0, 0}
		}
	}
}

func navGridCellSize(ng *pathfind.NavGrid) float64 {
	// NavGrid itself is cell-size-agnostic (it works in tile indices); the
	// world-to-tile scale lives on the TileMap it was built from. Callers
	// that need it track CellSize alongside the NavGrid; GoalSystem assumes
	// 1 world unit per tile unless told otherwise via WaypointRadius tuning.
	return 1
}
