package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// PatchDocument applies a partial JSON settings update over the persisted
// document and returns the patched document. Top-level null values are
// ignored (the existing value survives), matching merge semantics. The result
// is not validated here; callers validate before persisting.
func PatchDocument(persisted Document, patch []byte) (Document, error) {
	parsed := gjson.ParseBytes(patch)
	if !parsed.IsObject() {
		return nil, errors.New("config patch must be a JSON object")
	}

	current, err := json.Marshal(persisted)
	if err != nil {
		return nil, fmt.Errorf("encode current config: %w", err)
	}

	var applyErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Null {
			return true
		}
		current, applyErr = sjson.SetRawBytes(current, key.String(), []byte(value.Raw))
		return applyErr == nil
	})
	if applyErr != nil {
		return nil, fmt.Errorf("apply config patch: %w", applyErr)
	}

	var patched Document
	if err := json.Unmarshal(current, &patched); err != nil {
		return nil, fmt.Errorf("decode patched config: %w", err)
	}
	return patched, nil
}
