// Package xjson centralizes JSON encoding behind a single implementation so
// callers never import an encoder directly.
package xjson

import (
	stdjson "encoding/json"

	gjson "github.com/goccy/go-json"
)

// RawMessage is kept compatible with encoding/json's RawMessage type.
type RawMessage = stdjson.RawMessage

// Marshal encodes v using the configured JSON implementation.
func Marshal(v any) ([]byte, error) {
	return gjson.Marshal(v)
}

// MarshalIndent encodes v with the given prefix and indentation.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return gjson.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes data into v using the configured JSON implementation.
func Unmarshal(data []byte, v any) error {
	return gjson.Unmarshal(data, v)
}
