// Package timer provides a replaceable one-shot timer.
//
// A [Slot] holds at most one pending callback. Arming the slot again cancels
// the previous callback first, so two dismissals of the same logical effect
// can never race.
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Slot is a one-shot timer whose pending callback is replaced on every Arm.
//
// A Slot shares the lock of its owner: Arm, Cancel and Armed must be called
// with guard held, and callbacks run with guard held. This keeps a fired
// callback and the owner's own handlers strictly serialised. A callback
// superseded by Arm or Cancel never runs, even if its underlying timer had
// already expired and was waiting for the guard.
type Slot struct {
	clock clockwork.Clock
	guard sync.Locker

	timer clockwork.Timer
	gen   uint64
}

// NewSlot returns an unarmed slot driven by clock.
func NewSlot(clock clockwork.Clock, guard sync.Locker) *Slot {
	return &Slot{clock: clock, guard: guard}
}

// Arm schedules fn to run after d, cancelling any pending callback.
func (s *Slot) Arm(d time.Duration, fn func()) {
	s.Cancel()

	gen := s.gen
	s.timer = s.clock.AfterFunc(d, func() {
		s.guard.Lock()
		defer s.guard.Unlock()

		if s.gen != gen {
			return
		}
		s.timer = nil
		s.gen++
		fn()
	})
}

// Cancel disarms the slot. It reports whether a callback was pending.
func (s *Slot) Cancel() bool {
	s.gen++
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	return true
}

// Armed reports whether a callback is pending.
func (s *Slot) Armed() bool {
	return s.timer != nil
}
