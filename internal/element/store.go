package element

import (
	"fmt"
	"sort"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// Logger defines the logging interface used by the stores.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store is the factory and registry for one element kind. It builds
// elements of type E from configurations of type C, writes them through to
// the element database and keeps name and ID indexes over them.
//
// An element is indexed only after the database accepted it and is removed
// from the indexes only after the database removed it, so the registry and
// the database never disagree.
type Store[C any, E Element] struct {
	kind   Kind
	build  func(C) (E, error)
	db     Database
	byName map[string]E
	byID   map[audio.ID]E
	logger Logger
}

// NewStore creates a store for kind using build to construct elements.
func NewStore[C any, E Element](kind Kind, db Database, build func(C) (E, error)) *Store[C, E] {
	return &Store[C, E]{
		kind:   kind,
		build:  build,
		db:     db,
		byName: make(map[string]E),
		byID:   make(map[audio.ID]E),
		logger: noopLogger{},
	}
}

// Concrete stores for the six kinds.
type (
	DomainStore     = Store[DomainConfig, *Domain]
	SourceStore     = Store[SourceConfig, *Source]
	SinkStore       = Store[SinkConfig, *Sink]
	GatewayStore    = Store[GatewayConfig, *Gateway]
	ClassStore      = Store[ClassConfig, *Class]
	ConnectionStore = Store[ConnectionConfig, *Connection]
)

func NewDomainStore(db Database) *DomainStore   { return NewStore(KindDomain, db, newDomain) }
func NewSourceStore(db Database) *SourceStore   { return NewStore(KindSource, db, newSource) }
func NewSinkStore(db Database) *SinkStore       { return NewStore(KindSink, db, newSink) }
func NewGatewayStore(db Database) *GatewayStore { return NewStore(KindGateway, db, newGateway) }
func NewClassStore(db Database) *ClassStore     { return NewStore(KindClass, db, newClass) }

func NewConnectionStore(db Database) *ConnectionStore {
	return NewStore(KindConnection, db, newConnection)
}

// SetLogger sets the logger for the store.
func (s *Store[C, E]) SetLogger(logger Logger) {
	s.logger = logger
}

// Kind returns the element kind the store holds.
func (s *Store[C, E]) Kind() Kind { return s.kind }

// Create builds an element from cfg and registers it.
//
// Returns audio.ErrAlreadyExists if the name is taken and audio.ErrDatabase
// if the element database refused the element; in both cases nothing is
// indexed.
func (s *Store[C, E]) Create(cfg C) (E, error) {
	var zero E

	e, err := s.build(cfg)
	if err != nil {
		return zero, err
	}
	if _, exists := s.byName[e.Name()]; exists {
		return zero, fmt.Errorf("%w: %s %q", audio.ErrAlreadyExists, s.kind, e.Name())
	}

	id, err := s.db.Enter(e)
	if err != nil {
		return zero, fmt.Errorf("%w: entering %s %q: %v", audio.ErrDatabase, s.kind, e.Name(), err)
	}
	if id == audio.IDUnknown {
		return zero, fmt.Errorf("%w: %s %q was given no ID", audio.ErrDatabase, s.kind, e.Name())
	}
	if other, taken := s.byID[id]; taken {
		if rmErr := s.db.Remove(s.kind, id); rmErr != nil {
			s.logger.Error("rolling back duplicate ID", "kind", s.kind, "id", id, "error", rmErr)
		}
		return zero, fmt.Errorf("%w: %s ID %d already used by %q", audio.ErrDatabase, s.kind, id, other.Name())
	}

	e.assign(id)
	s.byName[e.Name()] = e
	s.byID[id] = e
	s.logger.Debug("element registered", "kind", s.kind, "name", e.Name(), "id", id)
	return e, nil
}

// Get looks an element up by name.
func (s *Store[C, E]) Get(name string) (E, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// GetByID looks an element up by ID.
func (s *Store[C, E]) GetByID(id audio.ID) (E, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Destroy unregisters the named element.
func (s *Store[C, E]) Destroy(name string) error {
	e, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s %q", audio.ErrNonExistent, s.kind, name)
	}
	return s.destroy(e)
}

// DestroyByID unregisters the element with the given ID.
func (s *Store[C, E]) DestroyByID(id audio.ID) error {
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s ID %d", audio.ErrNonExistent, s.kind, id)
	}
	return s.destroy(e)
}

func (s *Store[C, E]) destroy(e E) error {
	if err := s.db.Remove(s.kind, e.ID()); err != nil {
		return fmt.Errorf("%w: removing %s %q: %v", audio.ErrDatabase, s.kind, e.Name(), err)
	}
	delete(s.byName, e.Name())
	delete(s.byID, e.ID())
	s.logger.Debug("element unregistered", "kind", s.kind, "name", e.Name(), "id", e.ID())
	return nil
}

// DestroyAll unregisters every element, highest ID first. Failures are
// logged and the element is dropped from the indexes anyway; this is only
// used at shutdown.
func (s *Store[C, E]) DestroyAll() {
	all := s.List(nil)
	for i := len(all) - 1; i >= 0; i-- {
		e := all[i]
		if err := s.destroy(e); err != nil {
			s.logger.Warn("destroying element at shutdown", "kind", s.kind, "name", e.Name(), "error", err)
			delete(s.byName, e.Name())
			delete(s.byID, e.ID())
		}
	}
}

// List returns the elements accepted by filter, ordered by ID. A nil filter
// accepts everything.
func (s *Store[C, E]) List(filter func(E) bool) []E {
	out := make([]E, 0, len(s.byID))
	for _, e := range s.byID {
		if filter == nil || filter(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Names returns the names of all elements, ordered by ID.
func (s *Store[C, E]) Names() []string {
	all := s.List(nil)
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.Name()
	}
	return names
}

// Len returns the number of registered elements.
func (s *Store[C, E]) Len() int { return len(s.byID) }
