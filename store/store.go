package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jacentio/slotstore/internal/shard"
	"github.com/jacentio/slotstore/kv"
)

// IDFunc mints a new record id.
type IDFunc func() string

// NewUUID is the default IDFunc, returning a random (v4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc replaces the id generator.
func WithIDFunc(fn IDFunc) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithRegistry shares a type registry with the Store.
func WithRegistry(registry *Registry) Option {
	return func(s *Store) {
		s.registry = registry
	}
}

// Store is the object store engine.
type Store struct {
	substrate kv.Substrate
	config    Config
	registry  *Registry
	newID     IDFunc
	logger    *slog.Logger

	mu          sync.RWMutex
	initialized bool

	locks []sync.Mutex
}

// New creates a new Store over the given substrate.
func New(substrate kv.Substrate, config Config, opts ...Option) *Store {
	config.validate()
	s := &Store{
		substrate: substrate,
		config:    config,
		newID:     NewUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.locks = make([]sync.Mutex, s.config.LockStripes)
	return s
}

// Registry returns the type registry.
func (s *Store) Registry() *Registry {
	return s.registry
}

// Types returns the initialized types, sorted.
func (s *Store) Types() []string {
	return s.registry.Types()
}

// Initialized reports whether Init has succeeded.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Init probes the substrate and marks the engine initialized.
// Calling it again after success is a no-op that succeeds.
func (s *Store) Init(ctx context.Context) error {
	if err := s.substrate.Available(ctx); err != nil {
		s.logger.Debug("substrate unavailable", "error", err)
		return ErrStorageUnavailable
	}
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	return nil
}

// InitObjectStore registers a type, creating an empty collection in the
// substrate if the slot is absent. An existing collection is left untouched.
func (s *Store) InitObjectStore(ctx context.Context, typ string) error {
	if err := s.checkEngine(ctx); err != nil {
		return err
	}

	unlock := s.lock(typ)
	defer unlock()

	raw, ok, err := s.substrate.Get(ctx, typ)
	if err != nil {
		return s.mapSubstrateError(fmt.Errorf("init object store %s: %w", typ, err))
	}
	// An empty slot holds no collection and is rewritten.
	if !ok || raw == "" {
		if err := s.substrate.Set(ctx, typ, "{}"); err != nil {
			return s.mapSubstrateError(fmt.Errorf("init object store %s: %w", typ, err))
		}
		s.logger.Debug("created object store",
			"type", typ,
			"stripe", shard.Label(typ, len(s.locks)),
		)
	}

	s.registry.Register(typ)
	return nil
}

// FindAll returns every record of the type, ordered by id key.
// An empty collection yields an empty, non-nil slice.
func (s *Store) FindAll(ctx context.Context, typ string) ([]Record, error) {
	if err := s.checkType(ctx, typ); err != nil {
		return nil, err
	}
	c, err := s.read(ctx, typ)
	if err != nil {
		return nil, err
	}
	return c.sorted(), nil
}

// FindByID returns the record with the given id, or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, typ string, id string) (Record, error) {
	if err := s.checkType(ctx, typ); err != nil {
		return nil, err
	}
	c, err := s.read(ctx, typ)
	if err != nil {
		return nil, err
	}
	rec, ok := c[id]
	if !ok {
		return nil, notFound(id)
	}
	return rec, nil
}

// Save inserts or replaces a record. A record without an id (missing, nil or
// empty string) is assigned a new one; a record with an id overwrites any
// record stored at that id. The argument is not modified. The returned record
// is the persisted form, including its id.
func (s *Store) Save(ctx context.Context, typ string, rec Record) (Record, error) {
	if err := s.checkType(ctx, typ); err != nil {
		return nil, err
	}

	rec = rec.Clone()
	key, ok, err := IDKey(rec.ID())
	if err != nil {
		return nil, err
	}
	if !ok {
		key = s.newID()
		rec[IDField] = key
		s.logger.Debug("minted record id", "type", typ, "id", key)
	}

	saved, err := normalize(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record %s: %w", key, err)
	}

	unlock := s.lock(typ)
	defer unlock()

	c, err := s.read(ctx, typ)
	if err != nil {
		return nil, err
	}
	c[key] = saved
	if err := s.write(ctx, typ, c); err != nil {
		return nil, err
	}
	return saved, nil
}

// Delete removes the record with the given id and returns that id.
// It returns ErrNotFound, leaving the collection unchanged, if no record has the id.
func (s *Store) Delete(ctx context.Context, typ string, id string) (string, error) {
	if err := s.checkType(ctx, typ); err != nil {
		return "", err
	}

	unlock := s.lock(typ)
	defer unlock()

	c, err := s.read(ctx, typ)
	if err != nil {
		return "", err
	}
	if _, ok := c[id]; !ok {
		return "", notFound(id)
	}
	delete(c, id)
	if err := s.write(ctx, typ, c); err != nil {
		return "", err
	}
	return id, nil
}

// FindByProperty returns the records whose property strictly equals value,
// ordered by id key. No match yields an empty, non-nil slice.
func (s *Store) FindByProperty(ctx context.Context, typ, property string, value any) ([]Record, error) {
	if err := s.checkType(ctx, typ); err != nil {
		return nil, err
	}
	c, err := s.read(ctx, typ)
	if err != nil {
		return nil, err
	}

	result := []Record{}
	for _, rec := range c.sorted() {
		v, ok := rec[property]
		if ok && valuesEqual(v, value) {
			result = append(result, rec)
		}
	}
	return result, nil
}

// checkEngine verifies Init has succeeded and, if configured, that the
// substrate is still available.
func (s *Store) checkEngine(ctx context.Context) error {
	if !s.Initialized() {
		return ErrNotInitialized
	}
	if s.config.CheckAvailability {
		if err := s.substrate.Available(ctx); err != nil {
			s.logger.Debug("substrate unavailable", "error", err)
			return ErrStorageUnavailable
		}
	}
	return nil
}

// checkType verifies engine preconditions and that typ is registered.
func (s *Store) checkType(ctx context.Context, typ string) error {
	if err := s.checkEngine(ctx); err != nil {
		return err
	}
	if !s.registry.Has(typ) {
		return storeNotInitialized(typ)
	}
	return nil
}

// read loads and decodes a type's collection. A slot removed out from under
// a registered type, or emptied, reads as empty.
func (s *Store) read(ctx context.Context, typ string) (collection, error) {
	raw, ok, err := s.substrate.Get(ctx, typ)
	if err != nil {
		return nil, s.mapSubstrateError(fmt.Errorf("read object store %s: %w", typ, err))
	}
	if !ok || raw == "" {
		return collection{}, nil
	}
	c, err := decodeCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("decode object store %s: %w", typ, err)
	}
	return c, nil
}

func (s *Store) write(ctx context.Context, typ string, c collection) error {
	raw, err := c.encode()
	if err != nil {
		return fmt.Errorf("encode object store %s: %w", typ, err)
	}
	if err := s.substrate.Set(ctx, typ, raw); err != nil {
		return s.mapSubstrateError(fmt.Errorf("write object store %s: %w", typ, err))
	}
	return nil
}

// mapSubstrateError reports substrate unavailability as ErrStorageUnavailable
// and returns other errors unchanged.
func (s *Store) mapSubstrateError(err error) error {
	if errors.Is(err, kv.ErrUnavailable) {
		s.logger.Debug("substrate unavailable", "error", err)
		return ErrStorageUnavailable
	}
	return err
}

// lock acquires the stripe guarding typ and returns its release.
func (s *Store) lock(typ string) func() {
	m := &s.locks[shard.Index(typ, len(s.locks))]
	m.Lock()
	return m.Unlock
}
