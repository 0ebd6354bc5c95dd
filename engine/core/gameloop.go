package core

import "time"

// SimState is the run state of a GameLoop-driven scenario.
type SimState uint8

const (
	StateIdle SimState = iota
	StateRunning
	StatePaused
	StateComplete
	StateLoadingScenario
)

// GameLoop drives World.Tick at a fixed timestep regardless of how often
// Update is called, which is what makes two peers running the same command
// stream reach the same simulation state: every tick advances by exactly
// 1/TickRate seconds of simulated time, never by however long the last
// render frame actually took.
type GameLoop struct {
	World       *World
	State       SimState
	TickRate    float64 // fixed ticks per second
	accumulator float64
	lastTime    time.Time
}

// NewGameLoop creates a game loop with fixed tick rate
func NewGameLoop(tickRate float64) *GameLoop {
	return &GameLoop{
		World:    NewWorld(tickRate),
		TickRate: tickRate,
		lastTime: time.Now(),
	}
}

// Update should be called every render frame. It runs the simulation
// at fixed timestep (important for deterministic multiplayer).
// Returns the interpolation alpha for smooth rendering.
func (gl *GameLoop) Update() float64 {
	now := time.Now()
	frameTime := now.Sub(gl.lastTime).Seconds()
	gl.lastTime = now

	// Cap frame time to avoid spiral of death
	if frameTime > 0.25 {
		frameTime = 0.25
	}

	dt := 1.0 / gl.TickRate
	gl.accumulator += frameTime

	for gl.accumulator >= dt {
		if gl.State == StateRunning {
			gl.World.Tick(dt)
		}
		gl.accumulator -= dt
	}

	// Return interpolation alpha for smooth rendering
	return gl.accumulator / dt
}

// Play starts or resumes the scenario.
func (gl *GameLoop) Play() {
	gl.State = StateRunning
	gl.lastTime = time.Now()
}

// Pause halts ticking without losing accumulated agent state.
func (gl *GameLoop) Pause() {
	gl.State = StatePaused
}

// CurrentTick returns the current simulation tick
func (gl *GameLoop) CurrentTick() uint64 {
	return gl.World.TickCount
}
