package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rbright/nudge/internal/registry"
)

// Loaded captures the resolved config path, parsed values, and non-fatal
// warnings. Persisted holds only the user's own document; Config is the
// merged, validated runtime form.
type Loaded struct {
	Path      string
	Config    Config
	Persisted Document
	Warnings  []Warning
	Exists    bool
}

// Load resolves, reads, merges, and validates the runtime configuration.
// A malformed persisted document is never fatal: defaults are used and the
// problems surface as warnings.
func Load(explicitPath string, reg registry.Registry) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Loaded{
				Path:      resolvedPath,
				Config:    Default(reg),
				Persisted: Document{},
				Warnings: []Warning{{
					Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
				}},
			}, nil
		}
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	var persisted Document
	if err := json.Unmarshal(content, &persisted); err != nil {
		return Loaded{
			Path:      resolvedPath,
			Config:    Default(reg),
			Persisted: Document{},
			Warnings: []Warning{{
				Message: fmt.Sprintf("config file %q is not valid JSON (%v); using defaults", resolvedPath, err),
			}},
			Exists: true,
		}, nil
	}

	var warnings []Warning
	persisted, legacyWarning := translateLegacy(persisted)
	if legacyWarning != nil {
		warnings = append(warnings, *legacyWarning)
	}

	merged := Merge(DefaultDocument(reg), persisted)
	if v := Validate(merged); !v.Valid {
		for _, msg := range v.Errors {
			warnings = append(warnings, Warning{Message: msg})
		}
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("config file %q failed validation; using defaults", resolvedPath),
		})
		return Loaded{
			Path:      resolvedPath,
			Config:    Default(reg),
			Persisted: persisted,
			Warnings:  warnings,
			Exists:    true,
		}, nil
	}

	cfg, err := decode(merged)
	if err != nil {
		return Loaded{}, fmt.Errorf("decode config %q: %w", resolvedPath, err)
	}

	return Loaded{
		Path:      resolvedPath,
		Config:    cfg,
		Persisted: persisted,
		Warnings:  warnings,
		Exists:    true,
	}, nil
}

// translateLegacy rewrites the old flat monitoredApps list into the
// customApps shape. Categories and customApps are authoritative whenever
// either is present; the legacy key is only honored when both are absent.
func translateLegacy(doc Document) (Document, *Warning) {
	if doc == nil {
		return Document{}, nil
	}
	if _, hasCategories := doc["categories"]; hasCategories {
		return doc, nil
	}
	if _, hasCustom := doc["customApps"]; hasCustom {
		return doc, nil
	}
	rawApps, hasLegacy := doc["monitoredApps"].([]any)
	if !hasLegacy {
		return doc, nil
	}

	apps := make([]any, 0, len(rawApps))
	for _, app := range rawApps {
		if s, ok := app.(string); ok && s != "" {
			apps = append(apps, s)
		}
	}

	out := cloneMap(doc)
	delete(out, "monitoredApps")
	out["customApps"] = map[string]any{"enabled": true, "apps": apps}
	return out, &Warning{Message: "legacy monitoredApps list migrated to customApps"}
}

// decode materializes a merged document into the typed runtime form.
func decode(doc Document) (Config, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve materializes a persisted document into runtime form using reg for
// defaults. The document must already be valid.
func Resolve(persisted Document, reg registry.Registry) (Config, error) {
	return decode(Merge(DefaultDocument(reg), persisted))
}
