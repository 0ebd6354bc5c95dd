package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorld_AttachDetachGet(t *testing.T) {
	t.Parallel()

	w := NewWorld(60)
	id := w.Spawn()
	w.Attach(id, &Position{X: 1, Y: 2})

	got := w.Get(id, CompPosition)
	require.NotNil(t, got)
	assert.Equal(t, &Position{X: 1, Y: 2}, got)

	assert.True(t, w.Has(id, CompPosition))
	w.Detach(id, CompPosition)
	assert.False(t, w.Has(id, CompPosition))
	assert.Nil(t, w.Get(id, CompPosition))
}

func TestWorld_Query_RequiresAllComponents(t *testing.T) {
	t.Parallel()

	w := NewWorld(60)
	both := w.Spawn()
	w.Attach(both, &Position{})
	w.Attach(both, &Kinematic{})

	onlyPos := w.Spawn()
	w.Attach(onlyPos, &Position{})

	ids := w.Query(CompPosition, CompKinematic)
	assert.Equal(t, []EntityID{both}, ids)
}

func TestWorld_Destroy_RemovesAfterTick(t *testing.T) {
	t.Parallel()

	w := NewWorld(60)
	id := w.Spawn()
	assert.Equal(t, 1, w.EntityCount())

	w.Destroy(id)
	assert.Equal(t, 1, w.EntityCount(), "removal is deferred to the next Tick")

	w.Tick(1.0 / 60.0)
	assert.Equal(t, 0, w.EntityCount())
}

func TestWorld_AddSystem_OrdersByPriority(t *testing.T) {
	t.Parallel()

	w := NewWorld(60)
	var order []int
	w.AddSystem(orderedSystem{n: 2, order: &order})
	w.AddSystem(orderedSystem{n: 1, order: &order})
	w.AddSystem(orderedSystem{n: 3, order: &order})

	w.Tick(1.0 / 60.0)
	assert.Equal(t, []int{1, 2, 3}, order)
}

type orderedSystem struct {
	n     int
	order *[]int
}

func (s orderedSystem) Update(w *World, dt float64) { *s.order = append(*s.order, s.n) }
func (s orderedSystem) Priority() int                { return s.n }

func TestNewEntityID_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[EntityID]bool)
	for i := 0; i < 100; i++ {
		id := NewEntityID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
