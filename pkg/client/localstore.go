package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/everaidhq/everaid/internal/pack"
)

// ErrLocalNotFound indicates no locally owned pack has the given id.
var ErrLocalNotFound = errors.New("local pack not found")

// localData is the on-disk layout: the owned packs plus their steps keyed
// by pack id.
type localData struct {
	Packs []pack.Pack            `json:"packs"`
	Steps map[string][]pack.Step `json:"steps"`
}

// LocalStore persists locally owned packs as a single JSON file. Writes go
// through a temp file and rename so a crash mid-write never corrupts the
// stored packs.
type LocalStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewLocalStore creates a store at path, creating parent directories as
// needed. The file itself is created lazily on first write.
func NewLocalStore(path string, logger *zap.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating local store directory: %w", err)
	}
	return &LocalStore{path: path, logger: logger}, nil
}

func (s *LocalStore) load() (localData, error) {
	data := localData{Steps: map[string][]pack.Step{}}

	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return data, fmt.Errorf("reading local store: %w", err)
	}

	if err := json.Unmarshal(content, &data); err != nil {
		// A corrupt file loses its contents but never blocks the app.
		s.logger.Warn("local store corrupt, starting fresh", zap.Error(err))
		return localData{Steps: map[string][]pack.Step{}}, nil
	}
	if data.Steps == nil {
		data.Steps = map[string][]pack.Step{}
	}
	return data, nil
}

func (s *LocalStore) save(data localData) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding local store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("writing local store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing local store: %w", err)
	}
	return nil
}

// List returns all locally owned packs.
func (s *LocalStore) List() ([]pack.Pack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return append([]pack.Pack{}, data.Packs...), nil
}

// Get returns one locally owned pack and its steps.
func (s *LocalStore) Get(id string) (*pack.Pack, []pack.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, nil, err
	}
	for i := range data.Packs {
		if data.Packs[i].ID == id {
			p := data.Packs[i]
			return &p, data.Steps[id], nil
		}
	}
	return nil, nil, ErrLocalNotFound
}

// Put inserts or replaces a pack and its steps.
func (s *LocalStore) Put(p pack.Pack, steps []pack.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range data.Packs {
		if data.Packs[i].ID == p.ID {
			data.Packs[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		data.Packs = append(data.Packs, p)
	}
	data.Steps[p.ID] = steps
	return s.save(data)
}

// Delete removes a pack and its steps. Unknown ids return ErrLocalNotFound.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}

	found := false
	kept := data.Packs[:0]
	for _, p := range data.Packs {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return ErrLocalNotFound
	}
	data.Packs = kept
	delete(data.Steps, id)
	return s.save(data)
}
