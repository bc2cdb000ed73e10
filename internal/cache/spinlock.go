package cache

import (
	"runtime"
	"sync/atomic"
)

// spinBudget is the number of failed acquisitions before yielding the P.
const spinBudget = 64

// spinLock guards the ring's indices. Unlike sync.Mutex it never parks
// the calling goroutine, so it is safe to take from the trigger path.
// Holders must keep the critical section to an index update plus one
// record copy.
type spinLock struct {
	state atomic.Uint32
}

func (l *spinLock) Lock() {
	miss := 0
	for !l.state.CompareAndSwap(0, 1) {
		if miss++; miss >= spinBudget {
			miss = 0
			runtime.Gosched()
		}
	}
}

func (l *spinLock) Unlock() {
	l.state.Store(0)
}
