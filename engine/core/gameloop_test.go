package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGameLoop_TicksAtFixedRate(t *testing.T) {
	t.Parallel()

	gl := NewGameLoop(50) // 20ms per tick
	gl.Play()
	gl.lastTime = time.Now().Add(-105 * time.Millisecond)

	gl.Update()
	// ~105ms of accumulated time at a 20ms fixed step should run 5 ticks.
	assert.Equal(t, uint64(5), gl.CurrentTick())
}

func TestGameLoop_PausedDoesNotTick(t *testing.T) {
	t.Parallel()

	gl := NewGameLoop(50)
	gl.lastTime = time.Now().Add(-105 * time.Millisecond)

	gl.Update()
	assert.Equal(t, uint64(0), gl.CurrentTick(), "loop starts paused until Play is called")
}

func TestGameLoop_PlayResumesTicking(t *testing.T) {
	t.Parallel()

	gl := NewGameLoop(50)
	gl.Play()
	gl.Pause()
	gl.lastTime = time.Now().Add(-40 * time.Millisecond)
	gl.Update()
	assert.Equal(t, uint64(0), gl.CurrentTick())

	gl.Play()
	gl.lastTime = time.Now().Add(-40 * time.Millisecond)
	gl.Update()
	assert.Equal(t, uint64(2), gl.CurrentTick())
}
