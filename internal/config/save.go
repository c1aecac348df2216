package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbright/nudge/internal/registry"
)

// ValidationError reports a document that failed schema validation. The
// individual messages are preserved so callers can surface every violation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Errors, "; ")
}

// Save validates the persisted document against the merged defaults and
// writes it to path. An invalid document is never written; the caller keeps
// the in-memory state as source of truth.
func Save(path string, persisted Document, reg registry.Registry) error {
	if v := Validate(Merge(DefaultDocument(reg), persisted)); !v.Valid {
		return &ValidationError{Errors: v.Errors}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}

	raw, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, append(raw, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}
	return nil
}
