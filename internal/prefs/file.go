package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	prefsDirName = "prefs"
	valueExt     = ".json"
)

// FileBackend keeps one small JSON file per key, fronted by an in-memory copy.
type FileBackend struct {
	basePath string
	mu       sync.RWMutex
	memCache map[string][]byte
}

// NewFileBackend stores values under configDir/prefs. An empty configDir gives
// a memory-only backend.
func NewFileBackend(configDir string) (*FileBackend, error) {
	if configDir == "" {
		return &FileBackend{memCache: make(map[string][]byte)}, nil
	}

	basePath := filepath.Join(configDir, prefsDirName)
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create prefs directory: %w", err)
	}

	return &FileBackend{
		basePath: basePath,
		memCache: make(map[string][]byte),
	}, nil
}

func (f *FileBackend) Path() string { return f.basePath }

func (f *FileBackend) getFilePath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid preference key %q", key)
	}
	return filepath.Join(f.basePath, key+valueExt), nil
}

func (f *FileBackend) Get(key string) ([]byte, bool, error) {
	f.mu.RLock()
	value, exists := f.memCache[key]
	f.mu.RUnlock()
	if exists {
		return append([]byte(nil), value...), true, nil
	}

	if f.basePath == "" {
		return nil, false, nil
	}

	filePath, err := f.getFilePath(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	f.mu.Lock()
	f.memCache[key] = data
	f.mu.Unlock()

	return append([]byte(nil), data...), true, nil
}

func (f *FileBackend) Put(key string, value []byte) error {
	filePath := ""
	if f.basePath != "" {
		p, err := f.getFilePath(key)
		if err != nil {
			return err
		}
		filePath = p
	}

	stored := append([]byte(nil), value...)
	if filePath != "" {
		if err := writeFileAtomic(filePath, stored); err != nil {
			return err
		}
	}

	f.mu.Lock()
	f.memCache[key] = stored
	f.mu.Unlock()
	return nil
}

func (f *FileBackend) Delete(key string) error {
	f.mu.Lock()
	delete(f.memCache, key)
	f.mu.Unlock()

	if f.basePath == "" {
		return nil
	}

	filePath, err := f.getFilePath(key)
	if err != nil {
		return err
	}
	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }

func writeFileAtomic(filePath string, data []byte) error {
	// temp file + rename so a crash never leaves a half-written value
	tmpPath := filePath + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, filePath)
}
