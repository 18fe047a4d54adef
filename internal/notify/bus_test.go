package notify

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowAppendsInInsertionOrder(t *testing.T) {
	bus := NewBus(time.Minute)
	defer bus.Stop()

	first := bus.Success("saved")
	second := bus.Error("failed")
	third := bus.Info("saved")

	items := bus.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{first, second, third}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, SeverityError, items[1].Severity)
	assert.Equal(t, time.Minute, items[0].Duration)
	assert.NotEqual(t, first, third, "ids must be unique even for identical messages")
}

func TestDefaultDurationIsThreeSeconds(t *testing.T) {
	bus := NewBus(0)
	defer bus.Stop()

	bus.Warning("careful")
	assert.Equal(t, DefaultDuration, bus.Items()[0].Duration)
	assert.Equal(t, 3*time.Second, DefaultDuration)
}

func TestItemsExpireAfterTheirDuration(t *testing.T) {
	bus := NewBus(time.Minute)
	defer bus.Stop()

	bus.Show("short", SeverityInfo, 20*time.Millisecond)
	keep := bus.Show("long", SeverityInfo, time.Minute)

	require.Eventually(t, func() bool {
		return len(bus.Items()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, keep, bus.Items()[0].ID)
}

func TestCloseRemovesOnlyThatItem(t *testing.T) {
	bus := NewBus(time.Minute)
	defer bus.Stop()

	a := bus.Success("a")
	b := bus.Success("b")
	c := bus.Success("c")

	assert.True(t, bus.Close(b))
	assert.False(t, bus.Close(b))

	items := bus.Items()
	require.Len(t, items, 2)
	assert.Equal(t, a, items[0].ID)
	assert.Equal(t, c, items[1].ID)
}

func TestCloseLatest(t *testing.T) {
	bus := NewBus(time.Minute)
	defer bus.Stop()

	assert.False(t, bus.CloseLatest())
	a := bus.Info("a")
	bus.Info("b")
	assert.True(t, bus.CloseLatest())
	require.Len(t, bus.Items(), 1)
	assert.Equal(t, a, bus.Items()[0].ID)
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	bus := NewBus(time.Minute)
	defer bus.Stop()

	var calls atomic.Int32
	bus.Subscribe(func() { calls.Add(1) })

	id := bus.Info("x")
	bus.Close(id)
	bus.Show("y", SeverityInfo, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return calls.Load() == 4
	}, time.Second, 5*time.Millisecond)
}
