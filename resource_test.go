package bappa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rConfig struct{ MaxPlayers int }
type rWindowHandle struct{ Ptr uintptr }

func TestInsertGetResource(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	assert.False(t, HasResource[rConfig](w))
	assert.Nil(t, GetResource[rConfig](w))

	_, hadOld := InsertResource(w, rConfig{MaxPlayers: 4})
	assert.False(t, hadOld)
	assert.True(t, HasResource[rConfig](w))

	got := GetResource[rConfig](w)
	require.NotNil(t, got)
	assert.Equal(t, 4, got.MaxPlayers)
}

func TestInsertResourceReplacesAndReturnsOld(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	InsertResource(w, rConfig{MaxPlayers: 4})
	old, hadOld := InsertResource(w, rConfig{MaxPlayers: 8})
	assert.True(t, hadOld)
	assert.Equal(t, 4, old.MaxPlayers)
	assert.Equal(t, 8, GetResource[rConfig](w).MaxPlayers)
}

func TestGetResourcePointerAliasesStorage(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	InsertResource(w, rConfig{MaxPlayers: 1})
	ptr := GetResource[rConfig](w)
	ptr.MaxPlayers = 99

	assert.Equal(t, 99, GetResource[rConfig](w).MaxPlayers)
}

func TestRemoveResource(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	InsertResource(w, rConfig{MaxPlayers: 4})
	removed, ok := RemoveResource[rConfig](w)
	assert.True(t, ok)
	assert.Equal(t, 4, removed.MaxPlayers)
	assert.False(t, HasResource[rConfig](w))

	_, ok = RemoveResource[rConfig](w)
	assert.False(t, ok)
}

func TestNonSendResourceLifecycle(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	assert.Nil(t, GetNonSendResource[rWindowHandle](w))

	InsertNonSendResource(w, rWindowHandle{Ptr: 0xdead})
	got := GetNonSendResource[rWindowHandle](w)
	require.NotNil(t, got)
	assert.Equal(t, uintptr(0xdead), got.Ptr)

	removed, ok := RemoveNonSendResource[rWindowHandle](w)
	assert.True(t, ok)
	assert.Equal(t, uintptr(0xdead), removed.Ptr)
	assert.Nil(t, GetNonSendResource[rWindowHandle](w))
}

func TestRawResourceLifecycle(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	const hash uint64 = 0x1234
	assert.False(t, w.HasRawResource(hash))

	w.InsertRawResource(hash, []byte{1, 2, 3})
	assert.True(t, w.HasRawResource(hash))

	got, ok := w.GetRawResource(hash)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)

	got[0] = 0xff
	again, _ := w.GetRawResource(hash)
	assert.Equal(t, byte(1), again[0], "GetRawResource must return a defensive copy")

	assert.True(t, w.RemoveRawResource(hash))
	assert.False(t, w.HasRawResource(hash))
	assert.False(t, w.RemoveRawResource(hash))
}
