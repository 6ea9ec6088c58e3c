package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"filehost/internal/models"
)

// ErrConfigCorrupt is returned when the account document exists but cannot be parsed.
var ErrConfigCorrupt = errors.New("config document is corrupt")

const configFileMode = 0o600

// JSONConfigStore keeps the whole account document in one JSON file.
// Every write replaces the whole file; there is no partial update.
type JSONConfigStore struct {
	path string
	// mu serializes Update inside this process. Plain Save calls and other
	// processes still race and the last writer wins.
	mu sync.Mutex
}

func NewJSONConfigStore(path string) *JSONConfigStore {
	return &JSONConfigStore{path: path}
}

// Ensure implementation of ConfigStore interface at compile time.
var _ ConfigStore = (*JSONConfigStore)(nil)

// Path returns the file backing the store.
func (s *JSONConfigStore) Path() string { return s.path }

// Exists reports whether the document has been created.
func (s *JSONConfigStore) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat config %q: %w", s.path, err)
}

// Load reads and parses the whole document.
func (s *JSONConfigStore) Load(ctx context.Context) (models.Document, error) {
	if err := ctx.Err(); err != nil {
		return models.Document{}, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return models.Document{}, fmt.Errorf("read config %q: %w", s.path, err)
	}

	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Document{}, fmt.Errorf("%w: %q: %v", ErrConfigCorrupt, s.path, err)
	}
	if doc.Users == nil {
		doc.Users = map[string]*models.UserRecord{}
	}
	if doc.PendingRequests == nil {
		doc.PendingRequests = []models.PendingRequest{}
	}
	for name, u := range doc.Users {
		if u == nil {
			return models.Document{}, fmt.Errorf("%w: %q: user %q has no record", ErrConfigCorrupt, s.path, name)
		}
	}
	return doc, nil
}

// Save replaces the document on disk. The new content is written to a temp file in the
// same directory and renamed over the old one, so readers never see a torn file.
func (s *JSONConfigStore) Save(ctx context.Context, doc models.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.Users == nil {
		doc.Users = map[string]*models.UserRecord{}
	}
	if doc.PendingRequests == nil {
		doc.PendingRequests = []models.PendingRequest{}
	}

	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Chmod(tmpName, configFileMode); err != nil {
		return fmt.Errorf("chmod temp config: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace config %q: %w", s.path, err)
	}
	return nil
}

// Update loads the document, applies fn and saves the result.
// Nothing is written when fn returns an error; that error is returned unchanged.
func (s *JSONConfigStore) Update(ctx context.Context, fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return s.Save(ctx, doc)
}
