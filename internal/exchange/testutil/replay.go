// Package testutil provides recorded-response helpers for gateway tests:
// a stub transport that replays canned JSON responses and a fixture loader.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

type StubResponse struct {
	Status int
	Body   string
}

// Replayer is an http.RoundTripper that serves stubbed responses keyed by
// "METHOD path". Stubs for the same key are consumed in order; the last one
// sticks, so a repeated probe can keep answering.
type Replayer struct {
	mu    sync.Mutex
	stubs map[string][]StubResponse
	calls []string
}

func NewReplayer() *Replayer {
	return &Replayer{stubs: make(map[string][]StubResponse)}
}

func (r *Replayer) Stub(method, path string, status int, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := method + " " + path
	r.stubs[key] = append(r.stubs[key], StubResponse{Status: status, Body: body})
}

// Calls returns every request seen, as "METHOD path" in order.
func (r *Replayer) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *Replayer) CallCount(method, path string) int {
	key := method + " " + path
	count := 0
	for _, call := range r.Calls() {
		if call == key {
			count++
		}
	}
	return count
}

func (r *Replayer) RoundTrip(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	key := req.Method + " " + req.URL.Path
	r.calls = append(r.calls, key)

	queue, ok := r.stubs[key]
	var stub StubResponse
	if ok && len(queue) > 0 {
		stub = queue[0]
		if len(queue) > 1 {
			r.stubs[key] = queue[1:]
		}
	}
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no stub recorded for %s", key)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: stub.Status,
		Status:     http.StatusText(stub.Status),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(stub.Body)),
		Request:    req,
	}, nil
}
