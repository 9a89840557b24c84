// Package inflight suppresses duplicate concurrent submissions of the same
// operation, e.g. a double press on "save" issuing two create calls.
package inflight

import (
	"errors"
	"sync"
)

// ErrBusy is returned when the operation is already running
var ErrBusy = errors.New("operation already in progress")

// Guard tracks which operation keys are currently running
type Guard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

// New returns an empty Guard
func New() *Guard {
	return &Guard{running: make(map[string]struct{})}
}

// Acquire marks key as running. The returned release func must be called
// once the operation finished, whatever its outcome.
func (g *Guard) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.running[key]; ok {
		return nil, ErrBusy
	}
	g.running[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.running, key)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether key is running
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[key]
	return ok
}

// Any reports whether any operation is running
func (g *Guard) Any() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.running) > 0
}
