package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBus_EmitAndDispatch(t *testing.T) {
	t.Parallel()

	eb := NewEventBus()
	var received []Event
	eb.On(EvtGoalReached, func(e Event) { received = append(received, e) })

	eb.Emit(Event{Type: EvtGoalReached, Tick: 5, Payload: "agent-1"})
	eb.Emit(Event{Type: EvtAgentSpawned, Tick: 5})
	assert.Empty(t, received, "events queue until Dispatch is called")

	eb.Dispatch()
	assert.Len(t, received, 1)
	assert.Equal(t, "agent-1", received[0].Payload)
}

func TestEventBus_DispatchClearsQueue(t *testing.T) {
	t.Parallel()

	eb := NewEventBus()
	count := 0
	eb.On(EvtLP3Invoked, func(e Event) { count++ })

	eb.Emit(Event{Type: EvtLP3Invoked})
	eb.Dispatch()
	eb.Dispatch()

	assert.Equal(t, 1, count)
}

func TestEventBus_NoHandlerRegistered(t *testing.T) {
	t.Parallel()

	eb := NewEventBus()
	eb.Emit(Event{Type: EvtChatMessage})
	assert.NotPanics(t, func() { eb.Dispatch() })
}
