package transport

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// Subscribers is a concurrent set of data handlers.
//
// The zero value is not usable; create one with NewSubscribers.
type Subscribers struct {
	handlers *xsync.MapOf[uint64, DataHandler]
	nextID   atomic.Uint64
}

// NewSubscribers creates an empty registry.
func NewSubscribers() *Subscribers {
	return &Subscribers{handlers: xsync.NewMapOf[uint64, DataHandler]()}
}

// Add registers h and returns the function removing it. The returned function
// may be called more than once.
func (s *Subscribers) Add(h DataHandler) func() {
	if h == nil {
		return func() {}
	}

	id := s.nextID.Add(1)
	s.handlers.Store(id, h)

	return func() { s.handlers.Delete(id) }
}

// Publish hands data to every handler. Each handler gets its own copy.
func (s *Subscribers) Publish(data []byte) {
	s.handlers.Range(func(_ uint64, h DataHandler) bool {
		chunk := make([]byte, len(data))
		copy(chunk, data)
		h(chunk)

		return true
	})
}

// Len returns the number of registered handlers.
func (s *Subscribers) Len() int {
	return s.handlers.Size()
}
