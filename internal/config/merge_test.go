package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeOverridesWin(t *testing.T) {
	base := Document{"threshold": float64(50), "alertMessage": "Use your voice!"}
	overrides := Document{"threshold": float64(100)}

	merged := Merge(base, overrides)
	require.Equal(t, float64(100), merged["threshold"])
	require.Equal(t, "Use your voice!", merged["alertMessage"])
}

func TestMergeIgnoresNullOverrides(t *testing.T) {
	base := Document{"threshold": float64(50)}
	merged := Merge(base, Document{"threshold": nil})
	require.Equal(t, float64(50), merged["threshold"])
}

func TestMergeObjectsOneLevelDeep(t *testing.T) {
	base := Document{
		"voice": map[string]any{"enabled": false},
		"customApps": map[string]any{
			"enabled": true,
			"apps":    []any{"Code"},
		},
	}
	overrides := Document{
		"voice": map[string]any{"enabled": true},
		"customApps": map[string]any{
			"apps": []any{"Slack", "Discord"},
		},
	}

	merged := Merge(base, overrides)
	require.Equal(t, map[string]any{"enabled": true}, merged["voice"])
	// Sub-keys union; the array replaces wholesale.
	require.Equal(t, map[string]any{
		"enabled": true,
		"apps":    []any{"Slack", "Discord"},
	}, merged["customApps"])
}

func TestMergeNullSubKeysIgnored(t *testing.T) {
	base := Document{"customApps": map[string]any{"enabled": true, "apps": []any{"Code"}}}
	overrides := Document{"customApps": map[string]any{"apps": nil, "enabled": false}}

	merged := Merge(base, overrides)
	require.Equal(t, map[string]any{
		"enabled": false,
		"apps":    []any{"Code"},
	}, merged["customApps"])
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := Document{"categories": map[string]any{"devTools": map[string]any{"enabled": true}}}
	overrides := Document{"categories": map[string]any{"browsers": map[string]any{"enabled": true}}}

	merged := Merge(base, overrides)
	merged["categories"].(map[string]any)["devTools"].(map[string]any)["enabled"] = false

	require.Equal(t, Document{"categories": map[string]any{"devTools": map[string]any{"enabled": true}}}, base)
	require.Equal(t, Document{"categories": map[string]any{"browsers": map[string]any{"enabled": true}}}, overrides)
}

func TestMergeTypeMismatchReplaces(t *testing.T) {
	base := Document{"customApps": map[string]any{"enabled": true}}
	merged := Merge(base, Document{"customApps": "off"})
	require.Equal(t, "off", merged["customApps"])
}
