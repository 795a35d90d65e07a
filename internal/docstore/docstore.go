// Package docstore persists named collections as whole JSON documents in a
// single directory. There are no partial updates: every mutation is a full
// load-modify-save cycle.
package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Collection names understood by the store.
const (
	CollectionMenu     = "menu"
	CollectionOrders   = "orders"
	CollectionTables   = "tables"
	CollectionSettings = "settings"
	CollectionUsers    = "users"
)

// fileNames maps collections to their on-disk documents.
var fileNames = map[string]string{
	CollectionMenu:     "menu_data.json",
	CollectionOrders:   "orders_data.json",
	CollectionTables:   "tables_data.json",
	CollectionSettings: "settings.json",
	CollectionUsers:    "users_data.json",
}

// ErrUnknownCollection is returned for collection names the store does not manage.
var ErrUnknownCollection = errors.New("unknown collection")

// Store is a collection-keyed JSON document store. A single mutex serializes
// access, so within one process every read-modify-write cycle run through
// Update sees and produces consistent documents. Multiple processes sharing
// one directory can still race; that is a documented limitation, not handled
// here.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open prepares a store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Write names a document to be saved as part of a staged multi-document commit.
type Write struct {
	Collection string
	Value      any
}

// Tx gives a callback exclusive access to the store for a full
// load-modify-save cycle.
type Tx struct {
	s *Store
}

// Update runs fn while holding the store lock. All loads and saves inside fn
// observe no interleaved writers from this process.
func (s *Store) Update(fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(Tx{s: s})
}

// Load reads a collection into v. A missing document is reported via the
// boolean, not as an error.
func (s *Store) Load(collection string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(collection, v)
}

// Save writes a collection atomically (temp file, fsync, rename).
func (s *Store) Save(collection string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(collection, v)
}

// Load reads a collection within the transaction.
func (t Tx) Load(collection string, v any) (bool, error) {
	return t.s.load(collection, v)
}

// Save writes a collection within the transaction.
func (t Tx) Save(collection string, v any) error {
	return t.s.save(collection, v)
}

// SaveAll commits several documents together: every temp file is written and
// synced before the first rename, so a crash while staging leaves all
// documents untouched. A crash mid-rename can still leave a partial commit;
// rename-based writes cannot span files atomically.
func (t Tx) SaveAll(writes ...Write) error {
	type staged struct {
		tmp, dst string
	}
	stages := make([]staged, 0, len(writes))
	cleanup := func() {
		for _, st := range stages {
			os.Remove(st.tmp)
		}
	}

	for _, w := range writes {
		name, ok := fileNames[w.Collection]
		if !ok {
			cleanup()
			return fmt.Errorf("%w: %s", ErrUnknownCollection, w.Collection)
		}
		tmp, err := t.s.stage(name, w.Value)
		if err != nil {
			cleanup()
			return err
		}
		stages = append(stages, staged{tmp: tmp, dst: filepath.Join(t.s.dir, name)})
	}

	for _, st := range stages {
		if err := os.Rename(st.tmp, st.dst); err != nil {
			cleanup()
			return fmt.Errorf("commit %s: %w", st.dst, err)
		}
	}
	return nil
}

func (s *Store) load(collection string, v any) (bool, error) {
	name, ok := fileNames[collection]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", collection, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", collection, err)
	}
	return true, nil
}

func (s *Store) save(collection string, v any) error {
	name, ok := fileNames[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	tmp, err := s.stage(name, v)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit %s: %w", collection, err)
	}
	return nil
}

// stage writes v to a temp file in the store directory and returns its path.
func (s *Store) stage(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}

	f, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	return tmp, nil
}
