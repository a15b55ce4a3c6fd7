package template

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Store persists templates by name.
type Store interface {
	// Load returns every stored template keyed by name.
	Load(ctx context.Context) (map[string]Template, error)
	// Save creates or overwrites the template called name.
	Save(ctx context.Context, name string, t Template) error
	// Delete removes the template called name and reports whether it existed.
	Delete(ctx context.Context, name string) (bool, error)
}

// Getter is implemented by stores that can read one template without
// loading the rest. ok is false when name is not stored.
type Getter interface {
	Get(ctx context.Context, name string) (t Template, ok bool, err error)
}

// FileStore keeps all templates in one JSON document.
//
// Every Save and Delete reads the whole document, changes one key and writes
// it back. The mutex serializes this within a process; concurrent processes
// sharing the file are not coordinated.
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore returns a store backed by the JSON document at path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the location of the backing document.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document. A missing or unreadable document yields an empty
// mapping; a corrupt one is logged and also treated as empty.
func (s *FileStore) Load(ctx context.Context) (map[string]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// Save upserts name and rewrites the document.
func (s *FileStore) Save(ctx context.Context, name string, t Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	templates := s.load()
	templates[name] = t
	return s.write(templates)
}

// Delete removes name. The document is rewritten only when name existed.
func (s *FileStore) Delete(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	templates := s.load()
	if _, ok := templates[name]; !ok {
		return false, nil
	}
	delete(templates, name)
	return true, s.write(templates)
}

func (s *FileStore) load() map[string]Template {
	templates := make(map[string]Template)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("reading templates file", zap.String("path", s.path), zap.Error(err))
		}
		return templates
	}
	if err := json.Unmarshal(data, &templates); err != nil {
		s.logger.Warn("templates file is not valid JSON, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return make(map[string]Template)
	}
	return templates
}

// write replaces the document through a temp file and rename so a failed
// write leaves the previous document intact.
func (s *FileStore) write(templates map[string]Template) error {
	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding templates: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating templates directory: %w", err)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generating temp file name: %w", err)
	}
	tempPath := s.path + "." + hex.EncodeToString(randBytes) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("writing templates: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replacing templates file: %w", err)
	}

	s.logger.Debug("templates written", zap.String("path", s.path), zap.Int("count", len(templates)))
	return nil
}
