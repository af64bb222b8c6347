package ffi

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReentrantMutexAllowsSameThreadReentry(t *testing.T) {
	m := newReentrantMutex()
	m.Lock()
	m.Lock()
	m.Unlock()
	m.Unlock()
}

func TestReentrantMutexUnlockWithoutHoldingPanics(t *testing.T) {
	m := newReentrantMutex()
	assert.Panics(t, func() { m.Unlock() })
}

// TestReentrantMutexBlocksOtherThreadsUntilFullyUnlocked pins both sides to
// distinct OS threads with runtime.LockOSThread, since the mutex's identity
// is keyed on pthread_self() (the same per-OS-thread key lasterror.go uses)
// and plain goroutines carry no such guarantee among themselves.
func TestReentrantMutexBlocksOtherThreadsUntilFullyUnlocked(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	m := newReentrantMutex()
	m.Lock()
	m.Lock()

	readyToTry := make(chan struct{})
	acquired := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		close(readyToTry)
		m.Lock()
		close(acquired)
		m.Unlock()
	}()
	<-readyToTry

	select {
	case <-acquired:
		t.Fatal("a different thread must not acquire the lock while the owner still holds a nested lock")
	default:
	}

	m.Unlock()
	select {
	case <-acquired:
		t.Fatal("the lock must stay held until every nested Lock call has a matching Unlock")
	default:
	}

	m.Unlock()
	<-acquired
}
