package ledger

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Multi writes every entry to all of its backends concurrently.
type Multi struct {
	names    []string
	backends []Recorder
}

// NewMulti creates an empty fan-out recorder.
func NewMulti() *Multi {
	return &Multi{}
}

// Add registers a named backend.
func (m *Multi) Add(name string, r Recorder) {
	m.names = append(m.names, name)
	m.backends = append(m.backends, r)
}

// Len returns the number of backends.
func (m *Multi) Len() int {
	return len(m.backends)
}

// Record writes e to every backend. All backends are attempted; the first
// failure is returned.
func (m *Multi) Record(ctx context.Context, e Entry) error {
	if len(m.backends) == 0 {
		return ErrNoBackends
	}

	var g errgroup.Group
	for i, r := range m.backends {
		name, r := m.names[i], r
		g.Go(func() error {
			if err := r.Record(ctx, e); err != nil {
				return fmt.Errorf("backend %s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Lister returns the first backend that can list entries.
func (m *Multi) Lister() (Lister, bool) {
	for _, r := range m.backends {
		if l, ok := r.(Lister); ok {
			return l, true
		}
	}
	return nil, false
}
