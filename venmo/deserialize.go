package venmo

import (
	"encoding/json"
	"fmt"
)

// Deserialize extracts a single record from the "data" payload of a validated
// response, optionally walking nested keys first, and converts it into T via
// its json tags. Use DeserializePage when the payload is a list.
func Deserialize[T any](resp *ValidatedResponse, nested ...string) (T, error) {
	var zero T

	data, err := resolveData(resp, nested)
	if err != nil {
		return zero, err
	}

	if _, isList := data.([]any); isList {
		return zero, fmt.Errorf("expected a single object, got a list; use DeserializePage")
	}

	return convert[T](data)
}

// DeserializePage extracts a list from the "data" payload and converts every
// element into T. Conversion is all-or-nothing: one bad element fails the whole
// page. The returned page is unbound; retrieval methods bind it to the request
// that produced it so NextPage can continue the query.
func DeserializePage[T any](resp *ValidatedResponse, nested ...string) (*Page[T], error) {
	data, err := resolveData(resp, nested)
	if err != nil {
		return nil, err
	}

	list, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", data)
	}

	items, err := convert[[]T](list)
	if err != nil {
		return nil, err
	}
	return newPage(items), nil
}

// resolveData pulls body.data and walks the nested key path. A key that is
// absent or empty fails with MissingKeyError.
func resolveData(resp *ValidatedResponse, nested []string) (any, error) {
	if resp == nil || resp.Body == nil {
		return nil, ErrEmptyBody
	}
	body, ok := resp.Body.(map[string]any)
	if !ok || len(body) == 0 {
		return nil, ErrEmptyBody
	}

	data, ok := body["data"]
	if !ok || data == nil {
		return nil, &MissingKeyError{Key: "data"}
	}

	for _, key := range nested {
		m, ok := data.(map[string]any)
		if !ok {
			return nil, &MissingKeyError{Key: key}
		}
		next, ok := m[key]
		if !ok || isEmpty(next) {
			return nil, &MissingKeyError{Key: key}
		}
		data = next
	}

	return data, nil
}

// convert maps a decoded JSON value into T by re-marshaling. This keeps the
// field mapping declarative (json tags on the model structs) instead of
// hand-walking maps per record type.
func convert[T any](v any) (T, error) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode payload into %T: %w", out, err)
	}
	return out, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case bool:
		return !t
	case float64:
		return t == 0
	default:
		return false
	}
}
