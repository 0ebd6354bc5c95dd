// Command simulate runs a headless ORCA scenario for a fixed number of ticks
// and writes each agent's per-tick trajectory to a CSV file, in the same
// spirit as the RVO2 dissertation experiment driver this simulator's
// obstacle-avoidance core is grounded on. It also drives every scenario
// through the same lockstep command path the interactive viewer and any
// future multiplayer peer would use, and uses that to check determinism: the
// exact command stream it records must reproduce the live run bit-for-bit
// when replayed into a fresh world.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/orcasim/planner/engine/core"
	"github.com/orcasim/planner/engine/network"
	"github.com/orcasim/planner/engine/systems"
)

// velocityFixedPointScale converts a preferred-velocity unit direction into
// the int32 TargetX/TargetY fields GameCommand already carries for tile
// coordinates; a CmdSetPrefSpeed command has no tile target, so those fields
// are repurposed to carry direction*scale instead.
const velocityFixedPointScale = 1e4

func main() {
	scenario := flag.String("scenario", "circle", "scenario to run: circle, headon, corridor")
	agents := flag.Int("agents", 8, "number of agents (circle/headon scenarios)")
	ticks := flag.Int("ticks", 500, "number of simulation ticks to run")
	tickRate := flag.Float64("tick-rate", 60, "simulation ticks per second")
	radius := flag.Float64("radius", 0.5, "agent disk radius")
	maxSpeed := flag.Float64("max-speed", 2.0, "agent max speed")
	neighborTau := flag.Float64("neighbor-tau", 2.0, "agent-agent time horizon")
	senseRange := flag.Float64("sense-range", 15.0, "neighbor sensing range")
	maxNeighbors := flag.Int("max-neighbors", 10, "max neighbors considered per agent")
	out := flag.String("out", "trajectory.csv", "output CSV path")
	replayPath := flag.String("replay", "replay.bin", "path to write the recorded command replay")
	checkDeterminism := flag.Bool("check-determinism", true, "replay the recorded command stream into a fresh world and verify it reproduces the live run bit-for-bit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	dt := 1.0 / *tickRate

	liveWorld := core.NewWorld(*tickRate)
	spawnScenario(liveWorld, *scenario, *agents, *radius, *maxSpeed, *neighborTau)
	cmds := issueVelocityCommands(liveWorld)

	f, err := os.Create(*out)
	if err != nil {
		logger.Error("failed to create output file", "error", err)
		os.Exit(1)
	}
	csvWriter := csv.NewWriter(f)
	if err := csvWriter.Write([]string{"tick", "agent_id", "x", "y", "vx", "vy"}); err != nil {
		logger.Error("failed to write csv header", "error", err)
		os.Exit(1)
	}

	finalLive := runScenario(liveWorld, *ticks, dt, cmds, func(tick uint64, id core.EntityID, pos *core.Position, kin *core.Kinematic) {
		record := []string{
			strconv.FormatUint(tick, 10),
			strconv.FormatUint(uint64(id), 10),
			strconv.FormatFloat(pos.X, 'f', 6, 64),
			strconv.FormatFloat(pos.Y, 'f', 6, 64),
			strconv.FormatFloat(kin.Velocity[0], 'f', 6, 64),
			strconv.FormatFloat(kin.Velocity[1], 'f', 6, 64),
		}
		if err := csvWriter.Write(record); err != nil {
			logger.Error("failed to write csv record", "error", err)
		}
	}, *senseRange, *maxNeighbors, logger)
	csvWriter.Flush()
	f.Close()

	if err := recordReplay(*replayPath, cmds); err != nil {
		logger.Error("failed to write replay", "error", err)
		os.Exit(1)
	}

	if *checkDeterminism {
		replay, err := network.LoadReplay(*replayPath)
		if err != nil {
			logger.Error("failed to load replay", "error", err)
			os.Exit(1)
		}

		replayWorld := core.NewWorld(*tickRate)
		spawnScenario(replayWorld, *scenario, *agents, *radius, *maxSpeed, *neighborTau)
		// spawnScenario reissues the same preferred velocities the live run
		// started with; zero them so the replayed commands are the sole
		// source of motion, exactly as they were for the live run.
		for _, id := range replayWorld.Query(core.CompPosition, core.CompKinematic) {
			replayWorld.Get(id, core.CompKinematic).(*core.Kinematic).PrefVelocity = [2]float64{0, 0}
		}

		finalReplay := runScenario(replayWorld, *ticks, dt, replay.Commands, nil, *senseRange, *maxNeighbors, logger)

		if !positionsEqual(finalLive, finalReplay) {
			logger.Error("determinism check failed: replaying the recorded command stream diverged from the live run")
			os.Exit(1)
		}
		logger.Info("determinism check passed", "agents", len(finalLive))
	}

	logger.Info("simulation complete", "ticks", *ticks, "agents", len(finalLive), "out", *out, "replay", *replayPath)
}

// issueVelocityCommands captures each agent's scenario-assigned preferred
// velocity as a CmdSetPrefSpeed command and clears it on w, so that the
// command stream — not the initial world state — is what drives every
// agent once runScenario starts ticking. This is what makes the recorded
// replay a complete, self-sufficient description of the run.
func issueVelocityCommands(w *core.World) []network.GameCommand {
	ids := w.Query(core.CompPosition, core.CompKinematic)
	cmds := make([]network.GameCommand, 0, len(ids))
	for _, id := range ids {
		kin := w.Get(id, core.CompKinematic).(*core.Kinematic)
		vx, vy := kin.PrefVelocity[0], kin.PrefVelocity[1]
		speed := math.Hypot(vx, vy)
		var dirX, dirY float64
		if speed > 1e-12 {
			dirX, dirY = vx/speed, vy/speed
		}
		cmds = append(cmds, network.GameCommand{
			Type:     network.CmdSetPrefSpeed,
			EntityID: uint64(id),
			TargetX:  int32(math.Round(dirX * velocityFixedPointScale)),
			TargetY:  int32(math.Round(dirY * velocityFixedPointScale)),
			Speed:    speed,
		})
		kin.PrefVelocity = [2]float64{0, 0}
	}
	return cmds
}

// applyVelocityCommand decodes a CmdSetPrefSpeed command back into the
// target agent's Kinematic.PrefVelocity.
func applyVelocityCommand(w *core.World, cmd network.GameCommand) {
	if cmd.Type != network.CmdSetPrefSpeed {
		return
	}
	kin, _ := w.Get(core.EntityID(cmd.EntityID), core.CompKinematic).(*core.Kinematic)
	if kin == nil {
		return
	}
	dirX := float64(cmd.TargetX) / velocityFixedPointScale
	dirY := float64(cmd.TargetY) / velocityFixedPointScale
	kin.PrefVelocity = [2]float64{dirX * cmd.Speed, dirY * cmd.Speed}
}

// recordReplay writes cmds to a replay file via network.Replay, the same
// mechanism a live multiplayer session would use to let a disconnected peer
// or a post-match analysis tool reconstruct the run.
func recordReplay(path string, cmds []network.GameCommand) error {
	rec, err := network.NewReplayRecorder(path)
	if err != nil {
		return err
	}
	for _, c := range cmds {
		if err := rec.Record(c); err != nil {
			rec.Close()
			return err
		}
	}
	return rec.Close()
}

// runScenario feeds cmds through a LockstepManager on tick 0 — applying the
// same input-delay scheduling a live host/join session would — then ticks w
// for the requested duration, invoking onTick (if non-nil) with each agent's
// state after every tick. It returns each agent's final position, which the
// determinism check compares bit-for-bit between the live and replayed runs.
func runScenario(w *core.World, ticks int, dt float64, cmds []network.GameCommand, onTick func(tick uint64, id core.EntityID, pos *core.Position, kin *core.Kinematic), senseRange float64, maxNeighbors int, logger *slog.Logger) map[core.EntityID][2]float64 {
	lm := network.NewLockstepManager(0, true)
	for _, c := range cmds {
		lm.QueueCommand(0, c)
	}

	w.AddSystem(&systems.GoalSystem{Logger: logger})
	w.AddSystem(&systems.MovementSystem{
		CellSize:     senseRange / 2,
		SenseRange:   senseRange,
		MaxNeighbors: maxNeighbors,
		Logger:       logger,
	})

	ids := w.Query(core.CompPosition, core.CompKinematic)
	for t := 0; t < ticks; t++ {
		for _, cmd := range lm.GetCommands(uint64(t)) {
			applyVelocityCommand(w, cmd)
		}
		w.Tick(dt)
		if onTick != nil {
			for _, id := range ids {
				pos := w.Get(id, core.CompPosition).(*core.Position)
				kin := w.Get(id, core.CompKinematic).(*core.Kinematic)
				onTick(w.TickCount, id, pos, kin)
			}
		}
	}

	final := make(map[core.EntityID][2]float64, len(ids))
	for _, id := range ids {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		final[id] = [2]float64{pos.X, pos.Y}
	}
	return final
}

func positionsEqual(a, b map[core.EntityID][2]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for id, pa := range a {
		pb, ok := b[id]
		if !ok || pa != pb {
			return false
		}
	}
	return true
}

// spawnScenario populates w with one of the canonical ORCA regression
// scenarios: agents arranged on a circle all crossing through the center
// (circle), two columns walking head-on (headon), or a single-file line
// squeezing through a narrow gap (corridor).
func spawnScenario(w *core.World, name string, n int, radius, maxSpeed, neighborTau float64) {
	switch name {
	case "headon":
		spawnHeadOn(w, n, radius, maxSpeed, neighborTau)
	case "corridor":
		spawnCorridor(w, n, radius, maxSpeed, neighborTau)
	default:
		spawnCircle(w, n, radius, maxSpeed, neighborTau)
	}
}

func newAgent(w *core.World, x, y, radius, maxSpeed, neighborTau float64) core.EntityID {
	id := w.Spawn()
	w.Attach(id, &core.Position{X: x, Y: y})
	w.Attach(id, &core.Kinematic{
		Radius:      radius,
		MaxSpeed:    maxSpeed,
		NeighborTau: neighborTau,
		ObstacleTau: neighborTau,
	})
	w.Attach(id, &core.Owner{PlayerID: 0})
	return id
}

// spawnCircle places n agents evenly around a ring, each with a preferred
// velocity toward the antipodal point — the standard ORCA "circle crossing"
// stress scenario, since every agent's straight-line path passes near the
// center where all the others also converge.
func spawnCircle(w *core.World, n int, radius, maxSpeed, neighborTau float64) {
	const ringRadius = 10.0
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		x, y := ringRadius*math.Cos(theta), ringRadius*math.Sin(theta)
		id := newAgent(w, x, y, radius, maxSpeed, neighborTau)
		kin := w.Get(id, core.CompKinematic).(*core.Kinematic)
		gx, gy := -x, -y
		d := math.Hypot(gx, gy)
		kin.PrefVelocity = [2]float64{gx / d * maxSpeed, gy / d * maxSpeed}
	}
}

// spawnHeadOn places two facing columns of agents that must swap sides.
func spawnHeadOn(w *core.World, n int, radius, maxSpeed, neighborTau float64) {
	half := n / 2
	if half < 1 {
		half = 1
	}
	spacing := radius * 4
	for i := 0; i < half; i++ {
		y := float64(i) * spacing
		left := newAgent(w, -10, y, radius, maxSpeed, neighborTau)
		w.Get(left, core.CompKinematic).(*core.Kinematic).PrefVelocity = [2]float64{maxSpeed, 0}
		right := newAgent(w, 10, y, radius, maxSpeed, neighborTau)
		w.Get(right, core.CompKinematic).(*core.Kinematic).PrefVelocity = [2]float64{-maxSpeed, 0}
	}
}

// spawnCorridor places agents in single file heading toward a shared exit
// point, exercising the obstacle-avoidance path rather than agent-agent.
func spawnCorridor(w *core.World, n int, radius, maxSpeed, neighborTau float64) {
	spacing := radius * 3
	for i := 0; i < n; i++ {
		id := newAgent(w, -10, float64(i)*spacing, radius, maxSpeed, neighborTau)
		w.Get(id, core.CompKinematic).(*core.Kinematic).PrefVelocity = [2]float64{maxSpeed, 0}
	}
	fmt.Fprintln(os.Stderr, "note: corridor scenario has no walls without a tile map; agents pass straight through")
}
