package job

import (
	"runtime"
	"sync/atomic"
)

// spinLock is a CAS-based mutual exclusion lock for sections so short
// that parking on the OS scheduler (as sync.Mutex does under contention)
// would cost more than spinning a handful of iterations. The job queues'
// push/pop critical sections are exactly that: a few pointer writes.
type spinLock struct {
	held atomic.Bool
}

func (l *spinLock) Lock() {
	spins := 0
	for !l.held.CompareAndSwap(false, true) {
		spins++
		if spins > 64 {
			runtime.Gosched()
			spins = 0
		}
	}
}

func (l *spinLock) Unlock() {
	l.held.Store(false)
}

// semaphore lets worker goroutines sleep when every priority queue is
// empty instead of busy-polling, and lets Schedule/Signal wake exactly as
// many sleepers as there is new work for.
type semaphore struct {
	c chan struct{}
}

func newSemaphore() *semaphore {
	return &semaphore{c: make(chan struct{}, 1<<20)}
}

func (s *semaphore) Signal(n int) {
	for i := 0; i < n; i++ {
		select {
		case s.c <- struct{}{}:
		default:
			return
		}
	}
}

func (s *semaphore) Wait() {
	<-s.c
}

// WaitOrStop blocks until either Signal releases a permit (returns true)
// or stop is closed (returns false), whichever happens first.
func (s *semaphore) WaitOrStop(stop <-chan struct{}) bool {
	select {
	case <-s.c:
		return true
	case <-stop:
		return false
	}
}
