package bappa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventsReadableSameFrameBeforeSwap(t *testing.T) {
	e := NewEvents[int]()
	r := NewEventReader(e)

	e.Send(1)
	e.Send(2)

	assert.Equal(t, []int{1, 2}, r.Read(), "events sent this frame must be visible without waiting for Swap")
}

func TestEventDoubleBufferScenario(t *testing.T) {
	e := NewEvents[int]()
	r := NewEventReader(e)

	e.Send(1)
	assert.Equal(t, []int{1}, r.Read())

	e.Swap()
	e.Send(2)
	assert.Equal(t, []int{2}, r.Read(), "the same reader must see only newly sent events after a Swap")

	e.Swap()
	assert.Empty(t, r.Read(), "a reader with nothing new to consume must see no events")
}

func TestEventReaderCursorAdvancesWithinAFrame(t *testing.T) {
	e := NewEvents[int]()
	r := NewEventReader(e)

	e.Send(1)
	assert.Equal(t, []int{1}, r.Read())
	assert.Empty(t, r.Read(), "a second Read without a new Send must return nothing new")
}

func TestEventReaderResetsCursorAcrossSwap(t *testing.T) {
	e := NewEvents[int]()
	r := NewEventReader(e)

	e.Send(1)
	r.Read()
	e.Swap()

	e.Send(2)
	assert.Equal(t, []int{2}, r.Read(), "a reader must not carry a stale cursor offset into the next generation's buffer")
}

func TestMultipleReadersConsumeIndependently(t *testing.T) {
	e := NewEvents[string]()
	r1 := NewEventReader(e)
	r2 := NewEventReader(e)

	e.Send("a")

	assert.Equal(t, []string{"a"}, r1.Read())
	assert.Equal(t, []string{"a"}, r2.Read(), "a second reader must see every event regardless of what the first reader already consumed")
}

func TestEventSendBatchReadableSameFrame(t *testing.T) {
	e := NewEvents[int]()
	r := NewEventReader(e)

	e.SendBatch([]int{1, 2, 3})
	assert.Equal(t, []int{1, 2, 3}, r.Read())
}
