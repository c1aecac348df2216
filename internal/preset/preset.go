// Package preset defines the built-in named settings bundles.
package preset

import (
	"fmt"
	"strings"

	"github.com/rbright/nudge/internal/config"
)

// Names lists the valid preset names in the order used for error messages.
var Names = []string{"aggressive", "relaxed", "zen"}

// overrides returns the partial config document for a canonical preset name.
// Only the fields a preset sets are present; everything else survives the
// merge unchanged.
func overrides(name string) (config.Document, bool) {
	switch name {
	case "aggressive":
		return config.Document{
			"threshold":         float64(30),
			"resetAfterSeconds": float64(20),
			"alertMessage":      "Voice! Now!",
		}, true
	case "relaxed":
		return config.Document{
			"threshold":         float64(100),
			"resetAfterSeconds": float64(60),
			"alertMessage":      "Consider using voice input",
		}, true
	case "zen":
		return config.Document{
			"threshold":         float64(25),
			"resetAfterSeconds": float64(15),
			"alertMessage":      "Breathe. Speak.",
			"voice":             map[string]any{"enabled": true},
		}, true
	default:
		return nil, false
	}
}

// Apply merges the named preset over doc and returns the result. Lookup is
// case-insensitive. Unknown names fail with an error enumerating every valid
// preset.
func Apply(doc config.Document, name string) (config.Document, error) {
	canonical := strings.ToLower(strings.TrimSpace(name))
	bundle, ok := overrides(canonical)
	if !ok {
		return nil, fmt.Errorf("Unknown preset: %s (valid presets: %s)", name, strings.Join(Names, ", "))
	}
	return config.Merge(doc, bundle), nil
}
