package config

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Clamp bounds for user-tunable scalars.
const (
	ThresholdMin     = 10
	ThresholdMax     = 500
	ResetSecondsMin  = 5
	ResetSecondsMax  = 300
	AlertDurationMin = 0.5
	AlertDurationMax = 10.0
)

// ClampThreshold parses raw as an integer and clamps it into [10, 500].
// Unparseable input yields def. It never fails.
func ClampThreshold(raw any, def int) int {
	n, ok := parseNumber(raw)
	if !ok {
		return def
	}
	return clampInt(int(math.Trunc(n)), ThresholdMin, ThresholdMax)
}

// ClampResetPeriod parses raw as an integer and clamps it into [5, 300].
func ClampResetPeriod(raw any, def int) int {
	n, ok := parseNumber(raw)
	if !ok {
		return def
	}
	return clampInt(int(math.Trunc(n)), ResetSecondsMin, ResetSecondsMax)
}

// ClampAlertDuration parses raw as a float and clamps it into [0.5, 10].
func ClampAlertDuration(raw any, def float64) float64 {
	n, ok := parseNumber(raw)
	if !ok {
		return def
	}
	return math.Min(math.Max(n, AlertDurationMin), AlertDurationMax)
}

// ParseApps splits a comma-separated string into trimmed, non-empty tokens in
// input order. Non-string input yields an empty sequence. It never fails.
func ParseApps(raw any) []string {
	s, ok := raw.(string)
	if !ok {
		return nil
	}

	var apps []string
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		apps = append(apps, token)
	}
	return apps
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// parseNumber coerces JSON-decoded values and numeric strings to float64.
func parseNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, !math.IsNaN(v)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil && !math.IsNaN(f)
	default:
		return 0, false
	}
}
