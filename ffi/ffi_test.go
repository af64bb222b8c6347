package ffi

import (
	"testing"

	"github.com/TheBitDrifter/bappa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDestroyContext(t *testing.T) {
	id, err := createContext()
	require.NoError(t, err)

	ctx, ok := lookupContext(id)
	assert.True(t, ok)
	assert.NotNil(t, ctx.world)
	assert.NotNil(t, ctx.scheduler)

	assert.True(t, destroyContext(id))
	_, ok = lookupContext(id)
	assert.False(t, ok)

	assert.False(t, destroyContext(id), "destroying an already-removed context must report false, not panic")
}

func TestCreateContextAssignsDistinctIds(t *testing.T) {
	id1, err := createContext()
	require.NoError(t, err)
	id2, err := createContext()
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	destroyContext(id1)
	destroyContext(id2)
}

func TestLookupContextUnknownId(t *testing.T) {
	_, ok := lookupContext(ContextId(0xffffffff))
	assert.False(t, ok)
}

func TestPackUnpackEntityRoundTrips(t *testing.T) {
	e := bappa.Entity{Index: 42, Generation: 7}
	h := packEntity(e)
	assert.Equal(t, e, unpackEntity(h))
}

func TestPackEntityLayout(t *testing.T) {
	e := bappa.Entity{Index: 1, Generation: 2}
	h := packEntity(e)
	assert.Equal(t, uint64(2)<<32|uint64(1), h)
}

func TestLastErrorSetGetClear(t *testing.T) {
	clearLastError()
	code, msg := getLastError()
	assert.Equal(t, int32(0), code)
	assert.Equal(t, "", msg)

	setLastError(int32(bappa.KindInvalidArgument), "bad thing")
	code, msg = getLastError()
	assert.Equal(t, int32(bappa.KindInvalidArgument), code)
	assert.Equal(t, "bad thing", msg)

	clearLastError()
	code, msg = getLastError()
	assert.Equal(t, int32(0), code)
	assert.Equal(t, "", msg)
}

func TestLastErrorIsPerThreadSlotKeyedButCallableFromOneGoroutine(t *testing.T) {
	clearLastError()
	setLastError(5, "first")
	code, msg := getLastError()
	assert.Equal(t, int32(5), code)
	assert.Equal(t, "first", msg)
	clearLastError()
}

func TestBappaErrCodeExtractsEngineErrorKind(t *testing.T) {
	_, err := bappa.NewWorld()
	require.NoError(t, err)

	var engErr error = &bappa.EngineError{Kind: bappa.KindSchedulerCycle, Message: "cycle"}
	assert.Equal(t, int32(bappa.KindSchedulerCycle), bappaErrCode(engErr))

	assert.Equal(t, int32(bappa.KindInternalError), bappaErrCode(assertError{}))
}

type assertError struct{}

func (assertError) Error() string { return "not an engine error" }
