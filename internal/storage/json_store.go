package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const jsonFileVersion = 1

type jsonFile struct {
	Version int                        `json:"version"`
	Records map[string]json.RawMessage `json:"records"`
}

// JSONBackend keeps all records in a single JSON file, rewritten on every Put.
type JSONBackend struct {
	path string

	mu   sync.Mutex
	file *jsonFile
}

func NewJSONBackend(path string) *JSONBackend {
	return &JSONBackend{
		path: path,
	}
}

func (s *JSONBackend) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// An existing file is kept as is
	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f := &jsonFile{Version: jsonFileVersion, Records: map[string]json.RawMessage{}}
	if err := s.write(f); err != nil {
		return err
	}
	s.file = f
	return nil
}

func (s *JSONBackend) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage not initialized, run 'habitquest init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	f := &jsonFile{}
	if err := json.Unmarshal(data, f); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if f.Version > jsonFileVersion {
		return fmt.Errorf("storage file version %d is newer than supported version %d", f.Version, jsonFileVersion)
	}
	if f.Records == nil {
		f.Records = map[string]json.RawMessage{}
	}

	s.mu.Lock()
	s.file = f
	s.mu.Unlock()
	return nil
}

func (s *JSONBackend) Close() error {
	return nil
}

func (s *JSONBackend) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil, errNotLoaded
	}
	v, ok := s.file.Records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *JSONBackend) Put(records ...Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errNotLoaded
	}

	next := &jsonFile{Version: jsonFileVersion, Records: make(map[string]json.RawMessage, len(s.file.Records)+len(records))}
	for k, v := range s.file.Records {
		next.Records[k] = v
	}
	for _, r := range records {
		if !json.Valid(r.Value) {
			return fmt.Errorf("record %s is not valid JSON", r.Key)
		}
		next.Records[r.Key] = append(json.RawMessage(nil), r.Value...)
	}

	if err := s.write(next); err != nil {
		return err
	}
	s.file = next
	return nil
}

// write replaces the file through a temp file and rename, so a crash never
// leaves a half-written store behind.
func (s *JSONBackend) write(f *jsonFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONBackend) GetConfigPath() string {
	return s.path
}
