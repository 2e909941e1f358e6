package handle

import (
	"fmt"
	"sort"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// Waiter receives the result of an asynchronous operation.
type Waiter interface {
	Resolve(h audio.Handle, result error)
}

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Store maps outstanding handles to their waiters. It is not safe for
// concurrent use.
type Store struct {
	waiting map[audio.Handle]Waiter
	logger  Logger
}

// NewStore creates an empty handle store.
func NewStore() *Store {
	return &Store{
		waiting: make(map[audio.Handle]Waiter),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Bind records that w waits for h. A handle that is already bound points
// at a protocol violation by the routing side; the existing binding is kept.
func (s *Store) Bind(h audio.Handle, w Waiter) error {
	if w == nil {
		return ErrNilWaiter
	}
	if _, ok := s.waiting[h]; ok {
		s.logger.Warn("handle already bound", "handle", h.String())
		return fmt.Errorf("%w: %s", ErrAlreadyBound, h)
	}
	s.waiting[h] = w
	s.logger.Debug("handle bound", "handle", h.String())
	return nil
}

// Notify delivers result to the waiter bound to h and removes the binding.
// It reports whether a waiter was found.
func (s *Store) Notify(h audio.Handle, result error) bool {
	w, ok := s.waiting[h]
	if !ok {
		s.logger.Warn("acknowledgement for unbound handle dropped", "handle", h.String(), "result", audio.Code(result))
		return false
	}
	delete(s.waiting, h)
	s.logger.Debug("handle resolved", "handle", h.String(), "result", audio.Code(result))
	w.Resolve(h, result)
	return true
}

// Release removes the binding for h without notifying anyone.
func (s *Store) Release(h audio.Handle) bool {
	if _, ok := s.waiting[h]; !ok {
		return false
	}
	delete(s.waiting, h)
	return true
}

// IsBound reports whether somebody waits for h.
func (s *Store) IsBound(h audio.Handle) bool {
	_, ok := s.waiting[h]
	return ok
}

// Pending returns the bound handles in a stable order.
func (s *Store) Pending() []audio.Handle {
	out := make([]audio.Handle, 0, len(s.waiting))
	for h := range s.waiting {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// Len returns the number of outstanding handles.
func (s *Store) Len() int { return len(s.waiting) }

// Clear drops every binding. Used at shutdown.
func (s *Store) Clear() {
	clear(s.waiting)
}
