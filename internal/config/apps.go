package config

import (
	"strings"

	"github.com/rbright/nudge/internal/registry"
)

// EnabledApps computes the effective monitored-app pattern set: the union of
// every enabled category's apps (in registry order) plus the custom app list
// when enabled, de-duplicated with stable insertion order. Missing category or
// custom-app config is treated as disabled; the function never fails.
func EnabledApps(cfg Config, reg registry.Registry) []string {
	var ids []string
	for _, cat := range reg.Categories() {
		if cfg.Categories[cat.ID].Enabled {
			ids = append(ids, cat.ID)
		}
	}

	apps := reg.Resolve(ids)
	seen := make(map[string]bool, len(apps))
	for _, app := range apps {
		seen[app] = true
	}

	if cfg.CustomApps.Enabled {
		for _, app := range cfg.CustomApps.Apps {
			app = strings.TrimSpace(app)
			if app == "" || seen[app] {
				continue
			}
			seen[app] = true
			apps = append(apps, app)
		}
	}

	return apps
}
