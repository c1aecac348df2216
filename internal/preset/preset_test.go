package preset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/nudge/internal/config"
)

func TestApplyOverridesOnlyPresetFields(t *testing.T) {
	doc := config.Document{
		"threshold":    float64(200),
		"alertMessage": "custom",
		"customApps":   map[string]any{"enabled": true, "apps": []any{"Figma"}},
	}

	applied, err := Apply(doc, "aggressive")
	require.NoError(t, err)
	require.Equal(t, float64(30), applied["threshold"])
	require.Equal(t, float64(20), applied["resetAfterSeconds"])
	require.Equal(t, "Voice! Now!", applied["alertMessage"])
	// Untouched fields survive, and the input document is unchanged.
	require.Equal(t, map[string]any{"enabled": true, "apps": []any{"Figma"}}, applied["customApps"])
	require.Equal(t, float64(200), doc["threshold"])
}

func TestApplyIsCaseInsensitive(t *testing.T) {
	lower, err := Apply(config.Document{}, "aggressive")
	require.NoError(t, err)
	upper, err := Apply(config.Document{}, "AGGRESSIVE")
	require.NoError(t, err)
	require.Equal(t, lower, upper)
}

func TestApplyZenEnablesVoice(t *testing.T) {
	applied, err := Apply(config.Document{}, "zen")
	require.NoError(t, err)
	require.Equal(t, float64(25), applied["threshold"])
	require.Equal(t, "Breathe. Speak.", applied["alertMessage"])
	require.Equal(t, map[string]any{"enabled": true}, applied["voice"])
}

func TestApplyUnknownPreset(t *testing.T) {
	_, err := Apply(config.Document{}, "bogus")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unknown preset: bogus")
	require.Contains(t, err.Error(), "aggressive, relaxed, zen")
}

func TestAppliedPresetsValidate(t *testing.T) {
	for _, name := range Names {
		applied, err := Apply(config.Document{}, name)
		require.NoError(t, err)
		v := config.Validate(map[string]any(applied))
		require.True(t, v.Valid, "preset %s produced invalid overrides: %v", name, v.Errors)
	}
}
