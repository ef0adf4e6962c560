package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mithrel/oceannotes/internal/kv"
)

// DefaultKey is the application namespace the collection is stored under.
const DefaultKey = "ocean-notes.v1"

// state is the unit of durability: every note plus the seed marker.
type state struct {
	Seeded bool   `json:"seeded"`
	Notes  []Note `json:"notes"`
}

// Store owns the note collection. Every mutation reads the durable state,
// applies one change and writes the whole state back before returning.
type Store struct {
	mu        sync.Mutex
	kv        kv.Store
	key       string
	now       func() time.Time
	newID     func() string
	log       *zap.Logger
	seeds     []Seed
	onCorrupt func(error)
}

type Option func(*Store)

func WithKey(key string) Option { return func(s *Store) { s.key = key } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithIDFunc(fn func() string) Option { return func(s *Store) { s.newID = fn } }

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

func WithSeeds(seeds []Seed) Option { return func(s *Store) { s.seeds = seeds } }

// WithCorruptionHandler receives a *CorruptionError whenever stored state had
// to be discarded. The triggering operation still succeeds.
func WithCorruptionHandler(fn func(error)) Option { return func(s *Store) { s.onCorrupt = fn } }

func NewStore(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:    backend,
		key:   DefaultKey,
		now:   time.Now,
		newID: uuid.NewString,
		seeds: DefaultSeeds,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// EnsureSeeded inserts the sample notes the first time it is ever called.
// Once the seed marker is set it never mutates, even if the collection is empty.
func (s *Store) EnsureSeeded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load(ctx)
	if err != nil {
		return err
	}
	if st.Seeded {
		return nil
	}
	now := s.now().UTC()
	for _, sd := range s.seeds {
		st.Notes = append(st.Notes, Note{ID: s.newID(), Title: sd.Title, Content: sd.Content, CreatedAt: now, UpdatedAt: now})
	}
	st.Seeded = true
	if err := s.save(ctx, "seed", st); err != nil {
		return err
	}
	s.log.Info("seeded sample notes", zap.Int("count", len(s.seeds)))
	return nil
}

// List returns a copy of all notes in insertion order.
func (s *Store) List(ctx context.Context) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]Note(nil), st.Notes...), nil
}

func (s *Store) Get(ctx context.Context, id string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load(ctx)
	if err != nil {
		return Note{}, err
	}
	if i := indexOf(st.Notes, id); i >= 0 {
		return st.Notes[i], nil
	}
	return Note{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Create trims title, rejects it when empty, and persists a new note.
func (s *Store) Create(ctx context.Context, title, content string) (Note, error) {
	title = strings.TrimSpace(title)
	if err := validation.Validate(title, validation.Required); err != nil {
		return Note{}, fmt.Errorf("%w: title %w", ErrValidation, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load(ctx)
	if err != nil {
		return Note{}, err
	}
	now := s.now().UTC()
	n := Note{ID: s.newID(), Title: title, Content: content, CreatedAt: now, UpdatedAt: now}
	st.Notes = append(st.Notes, n)
	if err := s.save(ctx, "create", st); err != nil {
		return Note{}, err
	}
	s.log.Debug("created note", zap.String("id", n.ID), zap.String("title", n.Title))
	return n, nil
}

// Update merges the set fields of p into the note. It never creates a note.
func (s *Store) Update(ctx context.Context, id string, p Patch) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load(ctx)
	if err != nil {
		return Note{}, err
	}
	i := indexOf(st.Notes, id)
	if i < 0 {
		return Note{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	n := st.Notes[i]
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	// wall clocks can step backwards; UpdatedAt must not
	if now := s.now().UTC(); now.After(n.UpdatedAt) {
		n.UpdatedAt = now
	}
	st.Notes[i] = n
	if err := s.save(ctx, "update", st); err != nil {
		return Note{}, err
	}
	s.log.Debug("updated note", zap.String("id", n.ID))
	return n, nil
}

// Delete removes the note if present. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(st.Notes, id)
	if i < 0 {
		return nil
	}
	st.Notes = append(st.Notes[:i], st.Notes[i+1:]...)
	if err := s.save(ctx, "delete", st); err != nil {
		return err
	}
	s.log.Debug("deleted note", zap.String("id", id))
	return nil
}

func (s *Store) load(ctx context.Context) (state, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return state{}, nil
	}
	if err != nil {
		return state{}, fmt.Errorf("notes: read %s: %w", s.key, err)
	}
	st, err := decodeState(raw)
	if err != nil {
		s.reportCorruption(ctx, raw, err)
		return state{}, nil
	}
	return st, nil
}

func decodeState(raw []byte) (state, error) {
	var st state
	if err := json.Unmarshal(raw, &st); err != nil {
		return state{}, err
	}
	seen := make(map[string]struct{}, len(st.Notes))
	for i, n := range st.Notes {
		if strings.TrimSpace(n.ID) == "" {
			return state{}, fmt.Errorf("note %d has no id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return state{}, fmt.Errorf("duplicate note id %s", n.ID)
		}
		if n.CreatedAt.IsZero() || n.UpdatedAt.IsZero() {
			return state{}, fmt.Errorf("note %s is missing timestamps", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return st, nil
}

// reportCorruption keeps a copy of the unreadable blob next to the live key
// and notifies the handler. Failures here are logged only.
func (s *Store) reportCorruption(ctx context.Context, raw []byte, cause error) {
	cerr := &CorruptionError{Key: s.key, Err: cause}
	s.log.Warn("discarding corrupt note state", zap.String("key", s.key), zap.Error(cause))
	if err := s.kv.Set(ctx, s.key+".corrupt", raw); err != nil {
		s.log.Error("backup of corrupt note state failed", zap.Error(err))
	}
	if s.onCorrupt != nil {
		s.onCorrupt(cerr)
	}
}

func (s *Store) save(ctx context.Context, op string, st state) error {
	if st.Notes == nil {
		st.Notes = []Note{}
	}
	b, err := json.Marshal(st)
	if err != nil {
		return &WriteError{Op: op, Err: err}
	}
	if err := s.kv.Set(ctx, s.key, b); err != nil {
		s.log.Error("note state write failed", zap.String("op", op), zap.Error(err))
		return &WriteError{Op: op, Err: err}
	}
	return nil
}

func indexOf(ns []Note, id string) int {
	for i := range ns {
		if ns[i].ID == id {
			return i
		}
	}
	return -1
}
