package identity

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const usernameFile = "username"

// File persists the cached username under a state directory so a restarted
// client can pair it with a still-valid session cookie.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(stateDir string) *File {
	return &File{path: filepath.Join(stateDir, usernameFile)}
}

func (f *File) Get() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", false
	}
	username := strings.TrimSpace(string(data))
	return username, username != ""
}

func (f *File) Set(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if username == "" {
		_ = os.Remove(f.path)
		return
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return
	}
	_ = os.WriteFile(f.path, []byte(username), 0o600)
}

func (f *File) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = os.Remove(f.path)
}
