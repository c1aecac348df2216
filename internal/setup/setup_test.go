package setup

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/nudge/internal/config"
	"github.com/rbright/nudge/internal/registry"
)

func scriptedAnswers(answers ...string) *strings.Reader {
	return strings.NewReader(strings.Join(answers, "\n") + "\n")
}

func TestRunAppliesAnswers(t *testing.T) {
	reg := registry.Builtin()
	in := scriptedAnswers(
		"80",        // threshold
		"45",        // reset seconds
		"Dictate!",  // alert message
		"y",         // voice
		"n",         // devTools
		"y",         // terminal
		"",          // browsers keeps default
		"",          // communication keeps default
		"",          // notes keeps default
		"Figma, k9s", // custom apps
	)
	var out bytes.Buffer

	doc, err := Run(in, &out, config.Document{}, reg)
	require.NoError(t, err)

	require.Equal(t, float64(80), doc["threshold"])
	require.Equal(t, float64(45), doc["resetAfterSeconds"])
	require.Equal(t, "Dictate!", doc["alertMessage"])
	require.Equal(t, map[string]any{"enabled": true}, doc["voice"])

	categories := doc["categories"].(map[string]any)
	require.Equal(t, map[string]any{"enabled": false}, categories["devTools"])
	require.Equal(t, map[string]any{"enabled": true}, categories["terminal"])
	require.Equal(t, map[string]any{"enabled": false}, categories["browsers"])

	require.Equal(t, map[string]any{"enabled": true, "apps": []any{"Figma", "k9s"}}, doc["customApps"])

	// The wizard output names the effective settings.
	require.Contains(t, out.String(), "Threshold 80")
}

func TestRunEmptyAnswersKeepCurrentValues(t *testing.T) {
	reg := registry.Builtin()
	persisted := config.Document{"threshold": float64(120)}
	in := scriptedAnswers("", "", "", "", "", "", "", "", "", "")
	var out bytes.Buffer

	doc, err := Run(in, &out, persisted, reg)
	require.NoError(t, err)

	require.Equal(t, float64(120), doc["threshold"])
	_, hasReset := doc["resetAfterSeconds"]
	require.False(t, hasReset)

	// Category answers default to the current toggles.
	categories := doc["categories"].(map[string]any)
	require.Equal(t, map[string]any{"enabled": true}, categories["devTools"])
	require.Equal(t, map[string]any{"enabled": false}, categories["communication"])

	// The input document is not mutated.
	require.Equal(t, config.Document{"threshold": float64(120)}, persisted)
}

func TestRunClampsOutOfRangeAnswers(t *testing.T) {
	reg := registry.Builtin()
	in := scriptedAnswers("9000", "1", "", "", "", "", "", "", "", "")
	var out bytes.Buffer

	doc, err := Run(in, &out, config.Document{}, reg)
	require.NoError(t, err)
	require.Equal(t, float64(config.ThresholdMax), doc["threshold"])
	require.Equal(t, float64(config.ResetSecondsMin), doc["resetAfterSeconds"])
}

func TestRunProducesValidDocument(t *testing.T) {
	reg := registry.Builtin()
	in := scriptedAnswers("80", "45", "Dictate!", "y", "y", "y", "y", "y", "y", "Figma")
	var out bytes.Buffer

	doc, err := Run(in, &out, config.Document{}, reg)
	require.NoError(t, err)

	merged := config.Merge(config.DefaultDocument(reg), doc)
	v := config.Validate(map[string]any(merged))
	require.True(t, v.Valid, "wizard produced invalid document: %v", v.Errors)
}
