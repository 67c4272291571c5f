// Package decode converts loosely-typed JSON values into typed structs.
package decode

import "encoding/json"

// FromMap re-encodes data and decodes it into T.
func FromMap[T any](data map[string]any) (T, error) {
	var result T
	b, err := json.Marshal(data)
	if err != nil {
		return result, err
	}
	err = json.Unmarshal(b, &result)
	return result, err
}

// FromRaw decodes a raw JSON document into T. Empty input yields the zero value.
func FromRaw[T any](raw json.RawMessage) (T, error) {
	var result T
	if len(raw) == 0 {
		return result, nil
	}
	err := json.Unmarshal(raw, &result)
	return result, err
}
