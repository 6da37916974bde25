// Package ledger records finalized clock-in/out transactions to external
// stores. Writes are best-effort: failures are logged and never reach the
// wizard that produced the entry.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ledger errors
var (
	ErrNoBackends     = errors.New("no ledger backends configured")
	ErrUnknownBackend = errors.New("unknown ledger backend")
)

// Backend names accepted in configuration.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendSheets   = "sheets"
	BackendLog      = "log"
)

// DefaultListLimit is the number of entries returned when Filter.Limit is unset.
const DefaultListLimit = 10

// Entry is one finalized wizard transaction.
type Entry struct {
	Name      string
	Action    string
	Timestamp time.Time
}

// ISOTimestamp returns the timestamp as RFC3339 in its own location.
func (e Entry) ISOTimestamp() string {
	return e.Timestamp.Format(time.RFC3339)
}

// Row returns the entry as a spreadsheet row: name, action, timestamp.
func (e Entry) Row() []interface{} {
	return []interface{}{e.Name, e.Action, e.ISOTimestamp()}
}

// Recorder persists a single entry.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Filter narrows a listing.
type Filter struct {
	Name  string
	Limit int
}

// EffectiveLimit returns Limit, or DefaultListLimit when unset.
func (f Filter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

// Lister is implemented by backends that can read entries back, newest first.
type Lister interface {
	List(ctx context.Context, f Filter) ([]Entry, error)
}

// ParseBackends normalizes and validates configured backend names.
// Duplicates are dropped; order is preserved.
func ParseBackends(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		switch name {
		case BackendPostgres, BackendSQLite, BackendSheets, BackendLog:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, raw)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, ErrNoBackends
	}
	return out, nil
}
