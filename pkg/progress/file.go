package progress

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// FileBackend stores one JSON document per session under a state directory,
// so progress survives restarting the process with the same session id.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

// NewFileBackend stores session progress in dir/<session>.json.
func NewFileBackend(dir, session string) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: no state directory", ErrStorageUnavailable)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &FileBackend{path: filepath.Join(dir, session+".json")}, nil
}

// Path returns the session file path.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) load() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("reading progress: %w", err)
	}
	m := make(map[string]string)
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing progress: %w", err)
	}
	return m, nil
}

// save writes atomically: temp file then rename.
func (b *FileBackend) save(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling progress: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing progress: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("writing progress: %w", err)
	}
	return nil
}

func (b *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.load()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (b *FileBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.load()
	if err != nil {
		return err
	}
	if m[key] == value {
		return nil
	}
	m[key] = value
	return b.save(m)
}

func (b *FileBackend) Take(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.load()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	if !ok {
		return "", false, nil
	}
	delete(m, key)
	if err := b.save(m); err != nil {
		// Could not clear it; report nothing rather than risk a restart loop.
		return "", false, err
	}
	return v, true, nil
}

func (b *FileBackend) Delete(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(m, k)
	}
	return b.save(m)
}

func (b *FileBackend) Close() error { return nil }
