package network

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// LockstepManager schedules GameCommands (goal orders, cruise-speed
// changes, stops, chat) onto a future tick and hands them back once that
// tick arrives, whether the source was a real UDP peer or, as in
// cmd/simulate's determinism check, a locally recorded replay fed through
// the same QueueCommand/GetCommands path.
type LockstepManager struct {
	mu            sync.Mutex
	localPlayer   int
	pendingCmds   map[uint64][]GameCommand // tick -> commands
	confirmedTick uint64
	inputDelay    int // ticks of input delay (typically 2-3)
	conn          *net.UDPConn
	remoteAddr    *net.UDPAddr
	isHost        bool
	connected     bool
	cancel        context.CancelFunc
}

func NewLockstepManager(localPlayer int, isHost bool) *LockstepManager {
	return &LockstepManager{
		localPlayer: localPlayer,
		pendingCmds: make(map[uint64][]GameCommand),
		inputDelay:  2,
		isHost:      isHost,
	}
}

// Host starts listening for connections. receiveLoop runs until ctx is
// cancelled or Close is called, whichever comes first.
func (lm *LockstepManager) Host(ctx context.Context, port int) error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	lm.conn, err = net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	lm.connected = true
	ctx, lm.cancel = context.WithCancel(ctx)
	go lm.receiveLoop(ctx)
	return nil
}

// Join connects to a host. receiveLoop runs until ctx is cancelled or Close
// is called, whichever comes first.
func (lm *LockstepManager) Join(ctx context.Context, host string, port int) error {
	remote, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return err
	}
	local, err := net.ResolveUDPAddr("udp", ":0")
	if err != nil {
		return err
	}
	lm.conn, err = net.ListenUDP("udp", local)
	if err != nil {
		return err
	}
	lm.remoteAddr = remote
	lm.connected = true
	ctx, lm.cancel = context.WithCancel(ctx)
	go lm.receiveLoop(ctx)
	return nil
}

// QueueCommand schedules cmd for currentTick+inputDelay ticks from now,
// stamping its Tick field so GetCommands can find it, and forwards it to the
// remote peer if one is connected. A local-only manager (no Host/Join call)
// still schedules and returns commands correctly, which is what lets
// cmd/simulate drive both its live run and its replayed determinism check
// through this same method.
func (lm *LockstepManager) QueueCommand(currentTick uint64, cmd GameCommand) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	scheduledTick := currentTick + uint64(lm.inputDelay)
	cmd.Tick = scheduledTick
	lm.pendingCmds[scheduledTick] = append(lm.pendingCmds[scheduledTick], cmd)

	// Send to remote
	if lm.conn != nil && lm.remoteAddr != nil {
		var buf bytes.Buffer
		_ = cmd.Encode(&buf)
		_, _ = lm.conn.WriteToUDP(buf.Bytes(), lm.remoteAddr)
	}
}

// GetCommands returns all commands for a given tick
func (lm *LockstepManager) GetCommands(tick uint64) []GameCommand {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	cmds := lm.pendingCmds[tick]
	delete(lm.pendingCmds, tick)
	return cmds
}

// IsConnected returns true if network is active
func (lm *LockstepManager) IsConnected() bool {
	return lm.connected
}

// receiveLoop polls the UDP socket for incoming commands until ctx is done.
// The short read deadline lets it notice cancellation promptly without
// blocking Close indefinitely on a socket that never receives anything.
func (lm *LockstepManager) receiveLoop(ctx context.Context) {
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if lm.conn == nil {
			return
		}
		_ = lm.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, addr, err := lm.conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}
		if lm.isHost && lm.remoteAddr == nil {
			lm.remoteAddr = addr
		}

		var cmd GameCommand
		r := bytes.NewReader(buf[:n])
		if err := cmd.Decode(r); err != nil {
			continue
		}

		lm.mu.Lock()
		lm.pendingCmds[cmd.Tick] = append(lm.pendingCmds[cmd.Tick], cmd)
		lm.mu.Unlock()
	}
}

// Close cancels receiveLoop (if running) and shuts down the network
// connection.
func (lm *LockstepManager) Close() {
	lm.connected = false
	if lm.cancel != nil {
		lm.cancel()
	}
	if lm.conn != nil {
		lm.conn.Close()
	}
}
