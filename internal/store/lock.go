package store

import (
	"sync/atomic"
	"time"
)

const (
	lockRetryDelay = 100 * time.Millisecond
	lockMaxRetries = 5
)

// familyLock is a cooperative boolean-flag mutex. Acquire polls the flag with
// a fixed delay up to a fixed retry budget; there is no queueing or fairness,
// contenders simply race on each poll.
type familyLock struct {
	held atomic.Bool
}

func (l *familyLock) acquire() bool {
	for attempt := 0; attempt < lockMaxRetries; attempt++ {
		if l.held.CompareAndSwap(false, true) {
			return true
		}
		time.Sleep(lockRetryDelay)
	}
	return false
}

func (l *familyLock) release() {
	l.held.Store(false)
}
