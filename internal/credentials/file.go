package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File persists the token as JSON, e.g. ~/.diary/session.json
type File struct {
	mu    sync.RWMutex
	path  string
	token string
}

// OpenFile loads the token file at path. A missing or unreadable file means
// logged out.
func OpenFile(path string) (*File, error) {
	f := &File{path: path}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read token file: %w", err)
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		// A corrupt file is treated like an absent token
		return nil
	}
	f.token = values[TokenKey]
	return nil
}

func (f *File) save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(map[string]string{TokenKey: f.token}, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return os.Rename(tmp, f.path)
}

// Path returns the token file location
func (f *File) Path() string {
	return f.path
}

// Token returns the current token
func (f *File) Token() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.token, f.token != ""
}

// SetToken stores and persists the token
func (f *File) SetToken(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	prev := f.token
	f.token = token
	if err := f.save(); err != nil {
		f.token = prev
		return err
	}
	return nil
}

// ClearToken removes the token file. The token stays in memory when the
// file cannot be removed or emptied, so memory never disagrees with disk.
func (f *File) ClearToken() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err == nil || os.IsNotExist(err) {
		f.token = ""
		return nil
	}

	// an emptied file reads back as logged out too
	prev := f.token
	f.token = ""
	if saveErr := f.save(); saveErr != nil {
		f.token = prev
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
