// Package identity holds the locally cached username. The server's session
// indicator is an opaque cookie the client cannot read, so this cache bridges
// "who is logged in" across restarts. It is never consulted to decide
// *whether* the user is authenticated, only *who* they are once the server
// has confirmed the session.
package identity

import "sync"

// Cache stores at most one username. Clear is idempotent; both the session
// store and the gateway's auth policy call it without coordination.
type Cache interface {
	Get() (string, bool)
	Set(username string)
	Clear()
}

// Memory is an in-process cache, scoped to the lifetime of the client the
// way sessionStorage is scoped to a browser tab.
type Memory struct {
	mu       sync.Mutex
	username string
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Get() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.username, m.username != ""
}

func (m *Memory) Set(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.username = username
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.username = ""
}
