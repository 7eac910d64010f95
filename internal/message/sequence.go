package message

import (
	"sync"
	"time"
)

// Sequence issues unique, strictly increasing message identifiers.
// Identifiers are seeded from wall-clock milliseconds so they stay
// time-ordered across restarts, but two messages stamped in the same
// millisecond still get distinct ids.
type Sequence struct {
	mutex sync.Mutex
	last  int64
}

// NewSequence creates a new id sequence
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next identifier
func (s *Sequence) Next() int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now().UnixMilli()
	if now <= s.last {
		s.last++
	} else {
		s.last = now
	}
	return s.last
}
