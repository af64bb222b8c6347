package bappa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sysPosition struct{}
type sysVelocity struct{}
type sysConfig struct{}
type sysWindow struct{}

func TestAccessPatternReadReadNeverConflicts(t *testing.T) {
	pos := NewComponent[sysPosition]()

	a := NewAccessPattern().Reads(pos.Id())
	b := NewAccessPattern().Reads(pos.Id())
	assert.False(t, a.ConflictsWith(b))
}

func TestAccessPatternWriteReadConflicts(t *testing.T) {
	pos := NewComponent[sysPosition]()

	a := NewAccessPattern().Writes(pos.Id())
	b := NewAccessPattern().Reads(pos.Id())
	assert.True(t, a.ConflictsWith(b))
	assert.True(t, b.ConflictsWith(a))
}

func TestAccessPatternWriteWriteConflicts(t *testing.T) {
	pos := NewComponent[sysPosition]()

	a := NewAccessPattern().Writes(pos.Id())
	b := NewAccessPattern().Writes(pos.Id())
	assert.True(t, a.ConflictsWith(b))
}

func TestAccessPatternDisjointComponentsNoConflict(t *testing.T) {
	pos := NewComponent[sysPosition]()
	vel := NewComponent[sysVelocity]()

	a := NewAccessPattern().Writes(pos.Id())
	b := NewAccessPattern().Writes(vel.Id())
	assert.False(t, a.ConflictsWith(b))
}

func TestAccessPatternWriteBothTreatedAsWrite(t *testing.T) {
	pos := NewComponent[sysPosition]()

	a := NewAccessPattern().Reads(pos.Id()).Writes(pos.Id())
	b := NewAccessPattern().Reads(pos.Id())
	assert.True(t, a.ConflictsWith(b), "a component declared both read and write is a write for conflict purposes")
}

func TestAccessPatternResourceConflicts(t *testing.T) {
	a := WritesResource[sysConfig](NewAccessPattern())
	b := ReadsResource[sysConfig](NewAccessPattern())
	assert.True(t, a.ConflictsWith(b))

	c := ReadsResource[sysConfig](NewAccessPattern())
	d := ReadsResource[sysConfig](NewAccessPattern())
	assert.False(t, c.ConflictsWith(d))
}

func TestUsesNonSendForcesMainThreadAndConflicts(t *testing.T) {
	a := UsesNonSend[sysWindow](NewAccessPattern())
	assert.True(t, a.MainThreadOnly)

	b := UsesNonSend[sysWindow](NewAccessPattern())
	assert.True(t, a.ConflictsWith(b), "non-send access to the same type is always exclusive")
}

func TestTwoMainThreadOnlySystemsConflict(t *testing.T) {
	a := UsesNonSend[sysWindow](NewAccessPattern())
	b := NewAccessPattern()
	b.MainThreadOnly = true
	assert.True(t, a.ConflictsWith(b), "two main-thread-pinned systems can never run concurrently even without overlapping access")
}

func TestNewSystemAssignsUniqueIds(t *testing.T) {
	s1 := NewSystem("a", NewAccessPattern(), func(w *World, cmd *CommandBuffer) error { return nil })
	s2 := NewSystem("b", NewAccessPattern(), func(w *World, cmd *CommandBuffer) error { return nil })
	assert.NotEqual(t, s1.ID(), s2.ID())
	assert.Equal(t, "a", s1.Name())
}

func TestNewSystemRunIsInvokable(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	cmd := NewCommandBuffer(w)

	called := false
	s := NewSystem("noop", NewAccessPattern(), func(w *World, cmd *CommandBuffer) error {
		called = true
		return nil
	})
	require.NoError(t, s.run(w, cmd))
	assert.True(t, called)
}
