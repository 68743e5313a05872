// Package extract provides declarative field extraction over heterogeneous
// provider payloads. Each canonical field is described by an ordered chain
// of candidate keys, so schema drift in one provider degrades a single field
// instead of failing the whole record.
package extract

import (
	"strings"
)

// Chain returns the first non-nil value found by trying keys in order
// against a raw payload. Keys may be dotted paths ("crew.min").
func Chain(raw map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := lookup(raw, key); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String extracts the first non-empty string for the key chain.
func String(raw map[string]any, keys ...string) string {
	v, ok := Chain(raw, keys...)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// Number extracts the first numeric value for the key chain. JSON numbers
// decode as float64; integers stored by providers as strings are not
// coerced.
func Number(raw map[string]any, keys ...string) (float64, bool) {
	v, ok := Chain(raw, keys...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Map extracts the first object value for the key chain.
func Map(raw map[string]any, keys ...string) (map[string]any, bool) {
	v, ok := Chain(raw, keys...)
	if !ok {
		return nil, false
	}
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	return nil, false
}

// Slice extracts the first array value for the key chain.
func Slice(raw map[string]any, keys ...string) ([]any, bool) {
	v, ok := Chain(raw, keys...)
	if !ok {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	return nil, false
}

// lookup resolves a possibly dotted key against nested objects.
func lookup(raw map[string]any, key string) (any, bool) {
	if raw == nil {
		return nil, false
	}

	parts := strings.Split(key, ".")
	current := any(raw)
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
