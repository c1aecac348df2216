// Package config resolves, merges, validates, and defaults nudge configuration.
//
// The persisted form is a JSON document; the runtime form is Config. Loading
// merges the persisted document over the built-in defaults (persisted keys
// win, null values are ignored) and decodes the result.
package config

// Document is a parsed JSON configuration document.
type Document = map[string]any

// Config is the fully materialized runtime configuration used by nudge.
type Config struct {
	Enabled              bool                      `json:"enabled"`
	Threshold            int                       `json:"threshold"`
	ResetAfterSeconds    int                       `json:"resetAfterSeconds"`
	AlertDurationSeconds float64                   `json:"alertDurationSeconds"`
	AlertMessage         string                    `json:"alertMessage"`
	Voice                VoiceConfig               `json:"voice"`
	Categories           map[string]CategoryToggle `json:"categories"`
	CustomApps           CustomAppsConfig          `json:"customApps"`
	MenuBar              MenuBarConfig             `json:"menuBar"`
	Schedule             ScheduleConfig            `json:"schedule"`
	Server               ServerConfig              `json:"server"`
	TapCmd               string                    `json:"tapCmd"`
	FocusPollMS          int                       `json:"focusPollMs"`
}

// VoiceConfig controls speak-aloud alert playback.
type VoiceConfig struct {
	Enabled bool `json:"enabled"`
}

// CategoryToggle is the per-category enablement switch.
type CategoryToggle struct {
	Enabled bool `json:"enabled"`
}

// CustomAppsConfig carries user-supplied app patterns outside the registry.
type CustomAppsConfig struct {
	Enabled bool     `json:"enabled"`
	Apps    []string `json:"apps"`
}

// MenuBarConfig controls status display options.
type MenuBarConfig struct {
	ShowCount bool   `json:"showCount"`
	Icon      string `json:"icon"`
}

// ScheduleConfig controls cron-driven quiet hours.
type ScheduleConfig struct {
	Enabled    bool   `json:"enabled"`
	PauseSpec  string `json:"pauseSpec"`
	ResumeSpec string `json:"resumeSpec"`
}

// ServerConfig controls the browser settings server.
type ServerConfig struct {
	Enabled        bool     `json:"enabled"`
	Addr           string   `json:"addr"`
	StaticDir      string   `json:"staticDir"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Message string
}

// Validation is the accumulated outcome of validating a config document.
type Validation struct {
	Valid  bool
	Errors []string
}
