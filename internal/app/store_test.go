package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/nudge/internal/config"
	"github.com/rbright/nudge/internal/engine"
	"github.com/rbright/nudge/internal/registry"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	reg := registry.Builtin()
	path := filepath.Join(t.TempDir(), "config.json")

	loaded, err := config.Load(path, reg)
	require.NoError(t, err)
	return NewStore(loaded, reg, nil), path
}

func TestUpdatePersistsAndRefreshesConfig(t *testing.T) {
	store, path := newTestStore(t)

	err := store.Update(func(doc config.Document) (config.Document, error) {
		doc["threshold"] = float64(90)
		return doc, nil
	})
	require.NoError(t, err)
	require.Equal(t, 90, store.Config().Threshold)

	// The change reached disk.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"threshold": 90`)
}

func TestUpdateRejectsInvalidDocumentWithoutApplying(t *testing.T) {
	store, path := newTestStore(t)

	err := store.Update(func(doc config.Document) (config.Document, error) {
		doc["threshold"] = float64(2)
		return doc, nil
	})
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)

	require.Equal(t, config.DefaultThreshold, store.Config().Threshold)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestUpdateReloadsAttachedEngine(t *testing.T) {
	store, _ := newTestStore(t)

	eng := engine.New(nil, nil, func() string { return "Code" })
	store.AttachEngine(eng)
	eng.Start(store.Config(), store.EnabledApps())
	require.True(t, eng.Running())

	err := store.Update(func(doc config.Document) (config.Document, error) {
		doc["threshold"] = float64(15)
		return doc, nil
	})
	require.NoError(t, err)
	require.Equal(t, 15, eng.Status().Threshold)
	require.True(t, eng.Running())

	err = store.Update(func(doc config.Document) (config.Document, error) {
		doc["enabled"] = false
		return doc, nil
	})
	require.NoError(t, err)
	require.False(t, eng.Running())
}

func TestApplyPatchGoesThroughValidation(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.ApplyPatch([]byte(`{"alertMessage": "Dictate"}`)))
	require.Equal(t, "Dictate", store.Config().AlertMessage)

	err := store.ApplyPatch([]byte(`{"threshold": 9999}`))
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Dictate", store.Config().AlertMessage)
}

func TestDocumentMergesDefaultsWithPersisted(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.ApplyPatch([]byte(`{"threshold": 75}`)))

	doc := store.Document()
	require.Equal(t, float64(75), doc["threshold"])
	require.Equal(t, config.DefaultAlertMessage, doc["alertMessage"])
}

func TestStatusWithoutEngineUsesConfigStub(t *testing.T) {
	store, _ := newTestStore(t)

	st := store.Status()
	require.False(t, st.Enabled)
	require.Equal(t, config.DefaultThreshold, st.Threshold)
	require.Greater(t, st.MonitoredAppCount, 0)
}

func TestReloadFromDiskPicksUpExternalEdit(t *testing.T) {
	store, path := newTestStore(t)
	reg := registry.Builtin()

	require.NoError(t, config.Save(path, config.Document{"threshold": float64(130)}, reg))
	require.NoError(t, store.ReloadFromDisk())
	require.Equal(t, 130, store.Config().Threshold)
}
