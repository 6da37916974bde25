package clock

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyRoster is returned when a roster has no entries.
var ErrEmptyRoster = errors.New("roster has no entries")

// Roster maps a participant display name to an image locator (URL or local
// path). It is read-only after construction and safe for concurrent use.
type Roster struct {
	images map[string]string
	names  []string
}

// rosterFile is the on-disk roster format.
type rosterFile struct {
	Roster []struct {
		Name  string `yaml:"name"`
		Image string `yaml:"image"`
	} `yaml:"roster"`
}

// DefaultRoster returns the built-in roster.
func DefaultRoster() *Roster {
	r, _ := NewRoster(map[string]string{
		"Alice":   "https://example.com/cards/alice.png",
		"Bob":     "https://example.com/cards/bob.png",
		"Charlie": "https://example.com/cards/charlie.png",
		"Davika":  "cards/davika.png",
	})
	return r
}

// NewRoster builds a roster from name -> image locator. Names are trimmed;
// blank names are rejected.
func NewRoster(entries map[string]string) (*Roster, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyRoster
	}

	images := make(map[string]string, len(entries))
	names := make([]string, 0, len(entries))
	for name, image := range entries {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.New("roster entry has an empty name")
		}
		if _, dup := images[name]; dup {
			return nil, fmt.Errorf("duplicate roster entry %q", name)
		}
		images[name] = strings.TrimSpace(image)
		names = append(names, name)
	}
	sort.Strings(names)

	return &Roster{images: images, names: names}, nil
}

// LoadRoster reads a YAML roster file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}

	entries := make(map[string]string, len(f.Roster))
	for _, e := range f.Roster {
		name := strings.TrimSpace(e.Name)
		if _, dup := entries[name]; dup {
			return nil, fmt.Errorf("duplicate roster entry %q", name)
		}
		entries[name] = e.Image
	}
	return NewRoster(entries)
}

// Names returns the roster names in sorted order.
func (r *Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Image returns the image locator for name.
func (r *Roster) Image(name string) (string, bool) {
	img, ok := r.images[name]
	return img, ok
}

// NameAt returns the name at index i of Names.
func (r *Roster) NameAt(i int) (string, bool) {
	if i < 0 || i >= len(r.names) {
		return "", false
	}
	return r.names[i], true
}

// Len returns the number of entries.
func (r *Roster) Len() int {
	return len(r.names)
}

// IsURL reports whether an image locator is a remote http(s) URL.
func IsURL(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}
