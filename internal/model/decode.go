package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

func unmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// Decode parses a stored snapshot into its element slice.
// Empty input decodes to an empty slice.
func Decode[T any](data []byte) ([]T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Encode serializes an element slice for storage.
// A nil slice encodes as an empty array, never null.
func Encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}
