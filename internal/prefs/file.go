package prefs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the preferences file name inside the config directory.
const DefaultFileName = "preferences.yaml"

// FileStore persists preferences in a YAML document of the form
// namespace -> key -> value. The file is rewritten on every Set.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created lazily.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath returns <user config dir>/mapgen/preferences.yaml.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "mapgen", DefaultFileName), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, namespace, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := doc[namespace][key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if doc[namespace] == nil {
		doc[namespace] = make(map[string]string)
	}
	doc[namespace][key] = value
	return s.save(doc)
}

func (s *FileStore) All(_ context.Context, namespace string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(doc[namespace]))
	for k, v := range doc[namespace] {
		out[k] = v
	}
	return out, nil
}

func (s *FileStore) Clear(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc[namespace]; !ok {
		return nil
	}
	delete(doc, namespace)
	return s.save(doc)
}

func (s *FileStore) load() (map[string]map[string]string, error) {
	doc := make(map[string]map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse preferences %s: %w", s.path, err)
	}
	if doc == nil {
		doc = make(map[string]map[string]string)
	}
	return doc, nil
}

func (s *FileStore) save(doc map[string]map[string]string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".preferences-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp preferences: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close preferences: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}
