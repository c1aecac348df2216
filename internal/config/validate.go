package config

import (
	"fmt"
	"sort"
	"strings"
)

// Validate checks a configuration document against the settings schema. All
// violations are accumulated; callers get every problem at once, not just the
// first. Keys absent from the document are not violations; validation runs
// on merged documents where every default is present.
func Validate(doc any) Validation {
	m, ok := doc.(map[string]any)
	if !ok {
		return Validation{Valid: false, Errors: []string{"configuration must be a JSON object"}}
	}

	var errs []string

	if raw, present := m["enabled"]; present {
		if _, isBool := raw.(bool); !isBool {
			errs = append(errs, "enabled must be a boolean")
		}
	}

	if raw, present := m["threshold"]; present {
		if n, isNum := parseJSONNumber(raw); !isNum || n < ThresholdMin || n > ThresholdMax {
			errs = append(errs, fmt.Sprintf("threshold must be a number between %d and %d", ThresholdMin, ThresholdMax))
		}
	}

	if raw, present := m["resetAfterSeconds"]; present {
		if n, isNum := parseJSONNumber(raw); !isNum || n < ResetSecondsMin || n > ResetSecondsMax {
			errs = append(errs, fmt.Sprintf("resetAfterSeconds must be a number between %d and %d", ResetSecondsMin, ResetSecondsMax))
		}
	}

	if raw, present := m["alertDurationSeconds"]; present {
		if n, isNum := parseJSONNumber(raw); !isNum || n < AlertDurationMin || n > AlertDurationMax {
			errs = append(errs, fmt.Sprintf("alertDurationSeconds must be a number between %g and %g", AlertDurationMin, AlertDurationMax))
		}
	}

	if raw, present := m["alertMessage"]; present {
		s, isString := raw.(string)
		if !isString || strings.TrimSpace(s) == "" {
			errs = append(errs, "alertMessage must be a non-empty string")
		}
	}

	errs = append(errs, validateCategories(m)...)
	errs = append(errs, validateCustomApps(m)...)
	errs = append(errs, validateSchedule(m)...)

	return Validation{Valid: len(errs) == 0, Errors: errs}
}

func validateCategories(m map[string]any) []string {
	raw, present := m["categories"]
	if !present {
		return nil
	}

	categories, isMap := raw.(map[string]any)
	if !isMap {
		return []string{"categories must be an object"}
	}

	ids := make([]string, 0, len(categories))
	for id := range categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []string
	for _, id := range ids {
		toggle, isMap := categories[id].(map[string]any)
		if !isMap {
			errs = append(errs, fmt.Sprintf("categories.%s must be an object", id))
			continue
		}
		if _, isBool := toggle["enabled"].(bool); !isBool {
			errs = append(errs, fmt.Sprintf("categories.%s.enabled must be a boolean", id))
		}
	}
	return errs
}

func validateCustomApps(m map[string]any) []string {
	raw, present := m["customApps"]
	if !present {
		return nil
	}

	customApps, isMap := raw.(map[string]any)
	if !isMap {
		return []string{"customApps must be an object"}
	}

	var errs []string
	if enabled, present := customApps["enabled"]; present {
		if _, isBool := enabled.(bool); !isBool {
			errs = append(errs, "customApps.enabled must be a boolean")
		}
	}
	if apps, present := customApps["apps"]; present {
		if _, isArray := apps.([]any); !isArray {
			errs = append(errs, "customApps.apps must be an array")
		}
	}
	return errs
}

func validateSchedule(m map[string]any) []string {
	raw, present := m["schedule"]
	if !present {
		return nil
	}

	schedule, isMap := raw.(map[string]any)
	if !isMap {
		return []string{"schedule must be an object"}
	}

	var errs []string
	enabled, _ := schedule["enabled"].(bool)
	if rawEnabled, present := schedule["enabled"]; present {
		if _, isBool := rawEnabled.(bool); !isBool {
			errs = append(errs, "schedule.enabled must be a boolean")
		}
	}
	if enabled {
		if s, _ := schedule["pauseSpec"].(string); strings.TrimSpace(s) == "" {
			errs = append(errs, "schedule.pauseSpec must be a cron expression when schedule.enabled=true")
		}
		if s, _ := schedule["resumeSpec"].(string); strings.TrimSpace(s) == "" {
			errs = append(errs, "schedule.resumeSpec must be a cron expression when schedule.enabled=true")
		}
	}
	return errs
}

// parseJSONNumber accepts only actual JSON numbers, unlike parseNumber which
// also coerces strings for CLI clamp input.
func parseJSONNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
