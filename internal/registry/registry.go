// Package registry loads and resolves the application-category registry.
//
// The registry is the source of truth for which application-name patterns a
// category contributes to the monitored-app set. It is validated once at load
// time; a malformed registry is a fatal configuration error for the process,
// never a per-call failure.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Category is one registry entry, immutable at runtime.
type Category struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Apps        []string `json:"apps"`
}

// Registry is an ordered, validated set of categories.
type Registry struct {
	ordered []Category
	byID    map[string]Category
}

// Categories returns the categories in declaration order.
func (r Registry) Categories() []Category {
	out := make([]Category, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Get returns the category with the given id.
func (r Registry) Get(id string) (Category, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Len returns the number of categories.
func (r Registry) Len() int {
	return len(r.ordered)
}

// Resolve returns the de-duplicated union of app patterns for the given
// category ids, preserving registry declaration order. Unknown ids are
// skipped: the config layer may carry toggles for categories that a newer
// registry no longer defines.
func (r Registry) Resolve(ids []string) []string {
	enabled := make(map[string]bool, len(ids))
	for _, id := range ids {
		enabled[id] = true
	}

	seen := make(map[string]bool)
	var apps []string
	for _, cat := range r.ordered {
		if !enabled[cat.ID] {
			continue
		}
		for _, app := range cat.Apps {
			if seen[app] {
				continue
			}
			seen[app] = true
			apps = append(apps, app)
		}
	}
	return apps
}

// LoadRegistry parses and validates a category registry document.
func LoadRegistry(source io.Reader) (Registry, error) {
	raw, err := io.ReadAll(source)
	if err != nil {
		return Registry{}, fmt.Errorf("read registry source: %w", err)
	}

	var cats []Category
	if err := json.Unmarshal(raw, &cats); err != nil {
		return Registry{}, fmt.Errorf("decode registry json: %w", err)
	}
	if len(cats) == 0 {
		return Registry{}, errors.New("registry defines no categories")
	}

	byID := make(map[string]Category, len(cats))
	for i, cat := range cats {
		id := strings.TrimSpace(cat.ID)
		if id == "" {
			return Registry{}, fmt.Errorf("registry entry %d has an empty id", i)
		}
		if _, exists := byID[id]; exists {
			return Registry{}, fmt.Errorf("registry defines category %q more than once", id)
		}
		if strings.TrimSpace(cat.Name) == "" {
			return Registry{}, fmt.Errorf("category %q has an empty name", id)
		}
		if strings.TrimSpace(cat.Description) == "" {
			return Registry{}, fmt.Errorf("category %q has an empty description", id)
		}
		if len(cat.Apps) == 0 {
			return Registry{}, fmt.Errorf("category %q lists no apps", id)
		}
		for _, app := range cat.Apps {
			if strings.TrimSpace(app) == "" {
				return Registry{}, fmt.Errorf("category %q contains an empty app pattern", id)
			}
		}
		cats[i].ID = id
		byID[id] = cats[i]
	}

	return Registry{ordered: cats, byID: byID}, nil
}

// Load reads the per-user registry file, seeding it from the built-in
// categories when absent.
func Load(path string) (Registry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Registry{}, fmt.Errorf("read registry %q: %w", path, err)
		}
		if seedErr := seed(path); seedErr != nil {
			return Registry{}, seedErr
		}
		return Builtin(), nil
	}

	reg, err := LoadRegistry(strings.NewReader(string(content)))
	if err != nil {
		return Registry{}, fmt.Errorf("registry %q: %w", path, err)
	}
	return reg, nil
}

// seed writes the built-in categories to path for later user editing.
func seed(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("ensure registry dir: %w", err)
	}
	raw, err := json.MarshalIndent(builtinCategories(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode builtin registry: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o600); err != nil {
		return fmt.Errorf("seed registry %q: %w", path, err)
	}
	return nil
}
