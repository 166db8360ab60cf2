// Package schedule provides one-shot, cancellable deferred actions at
// absolute times. Actions run on a timer goroutine, so they must hand
// work off (e.g. enqueue a message) rather than mutate shared state.
package schedule

import (
	"sync"
	"time"
)

type Handle uint64

// None is the zero Handle; Cancel(None) is a no-op.
const None Handle = 0

type Scheduler struct {
	mu      sync.Mutex
	nextID  Handle
	timers  map[Handle]*time.Timer
	stopped bool
}

func New() *Scheduler {
	return &Scheduler{timers: make(map[Handle]*time.Timer)}
}

// At schedules fn to run once at t. A time in the past fires
// immediately. Returns None after Stop.
func (s *Scheduler) At(t time.Time, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return None
	}
	s.nextID++
	h := s.nextID
	s.timers[h] = time.AfterFunc(time.Until(t), func() {
		s.mu.Lock()
		_, live := s.timers[h]
		delete(s.timers, h)
		s.mu.Unlock()
		if live {
			fn()
		}
	})
	return h
}

// Cancel stops a pending action. Cancelling an already-fired or unknown
// handle is a no-op.
func (s *Scheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[h]; ok {
		timer.Stop()
		delete(s.timers, h)
	}
}

// Stop cancels everything pending and rejects further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for h, timer := range s.timers {
		timer.Stop()
		delete(s.timers, h)
	}
}
