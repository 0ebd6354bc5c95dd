package network

import (
	"bufio"
	"fmt"
	"math"
	"os"
)

// Replay records and plays back the exact GameCommand stream that drove a
// run. Because MovementSystem's ORCA solve and GoalSystem's routing are
// both deterministic given the same commands, replaying one recorded file
// into a fresh World reproduces the original run bit-for-bit — this is what
// cmd/simulate's -check-determinism flag verifies on every invocation.
type Replay struct {
	Commands []GameCommand
	lastTick uint64
	file     *os.File
	writer   *bufio.Writer
}

// NewReplayRecorder creates a replay file for recording
func NewReplayRecorder(path string) (*Replay, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Replay{
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

// Record writes a command to the replay file. It rejects commands that
// could not possibly replay to the same result they produced live: a
// non-finite Speed would make ORCA's solve diverge from run to run on
// float rounding alone, and a Tick earlier than the last one recorded means
// the caller queued commands out of order, which CommandsForTick's linear
// scan does not correct for.
func (r *Replay) Record(cmd GameCommand) error {
	if math.IsNaN(cmd.Speed) || math.IsInf(cmd.Speed, 0) {
		return fmt.Errorf("network: refusing to record non-finite speed %v for entity %d at tick %d", cmd.Speed, cmd.EntityID, cmd.Tick)
	}
	if cmd.Tick < r.lastTick {
		return fmt.Errorf("network: refusing to record out-of-order tick %d after %d", cmd.Tick, r.lastTick)
	}
	r.lastTick = cmd.Tick
	r.Commands = append(r.Commands, cmd)
	return cmd.Encode(r.writer)
}

// Close flushes and closes the replay file
func (r *Replay) Close() error {
	if r.writer != nil {
		r.writer.Flush()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// LoadReplay loads a replay file, stopping at the first record it cannot
// decode (normally end-of-file). A record that decodes cleanly but carries a
// non-finite Speed indicates a corrupted or hand-edited file rather than one
// this package ever wrote, since Record refuses to write one; LoadReplay
// rejects the whole file in that case instead of feeding a diverging replay
// into the determinism check.
func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	replay := &Replay{}
	reader := bufio.NewReader(f)
	for {
		var cmd GameCommand
		if err := cmd.Decode(reader); err != nil {
			break
		}
		if math.IsNaN(cmd.Speed) || math.IsInf(cmd.Speed, 0) {
			return nil, fmt.Errorf("network: replay %s contains non-finite speed %v for entity %d at tick %d", path, cmd.Speed, cmd.EntityID, cmd.Tick)
		}
		replay.Commands = append(replay.Commands, cmd)
	}
	return replay, nil
}

// CommandsForTick returns all commands at a given tick during playback
func (r *Replay) CommandsForTick(tick uint64) []GameCommand {
	var result []GameCommand
	for _, c := range r.Commands {
		if c.Tick == tick {
			result = append(result, c)
		}
	}
	return result
}
