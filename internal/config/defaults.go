package config

import (
	"encoding/json"

	"github.com/rbright/nudge/internal/registry"
)

// Scalar defaults. Threshold and reset also serve as clamp fallbacks.
const (
	DefaultThreshold     = 50
	DefaultResetSeconds  = 30
	DefaultAlertDuration = 2.0
	DefaultAlertMessage  = "Use your voice!"
	DefaultServerAddr    = "127.0.0.1:8765"
)

// Default returns the canonical runtime configuration used when no file is
// present. Category toggles are constructed from the registry with only
// devTools pre-enabled.
func Default(reg registry.Registry) Config {
	categories := make(map[string]CategoryToggle, reg.Len())
	for _, cat := range reg.Categories() {
		categories[cat.ID] = CategoryToggle{Enabled: cat.ID == "devTools"}
	}

	return Config{
		Enabled:              true,
		Threshold:            DefaultThreshold,
		ResetAfterSeconds:    DefaultResetSeconds,
		AlertDurationSeconds: DefaultAlertDuration,
		AlertMessage:         DefaultAlertMessage,
		Voice:                VoiceConfig{Enabled: false},
		Categories:           categories,
		CustomApps:           CustomAppsConfig{Enabled: true, Apps: []string{}},
		MenuBar:              MenuBarConfig{ShowCount: false, Icon: "keyboard"},
		Schedule:             ScheduleConfig{Enabled: false},
		Server: ServerConfig{
			Enabled:        false,
			Addr:           DefaultServerAddr,
			AllowedOrigins: []string{"http://127.0.0.1:8765", "http://localhost:8765"},
		},
		TapCmd:      "nudge-tap",
		FocusPollMS: 300,
	}
}

// DefaultDocument returns the default configuration in document form, used as
// the merge base for persisted documents.
func DefaultDocument(reg registry.Registry) Document {
	raw, err := json.Marshal(Default(reg))
	if err != nil {
		panic(err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		panic(err)
	}
	return doc
}
