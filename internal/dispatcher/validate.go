package dispatcher

import (
	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// Size caps enforced by validators before any transport I/O.
const (
	MaxNotes            = 10000
	MaxAutomationPoints = 500
	MaxBatchParams      = 200
	MaxQueryChars       = 500
)

// StringSlice extracts a []string parameter, rejecting missing or
// wrong-typed fields with InvalidInput.
func StringSlice(params map[string]any, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok {
		return nil, bridgeerr.Newf(bridgeerr.InvalidInput, "missing field %q", key)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, bridgeerr.Newf(bridgeerr.InvalidInput, "field %q must be an array", key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, bridgeerr.Newf(bridgeerr.InvalidInput, "field %q must contain only strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// String extracts a required string parameter.
func String(params map[string]any, key string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return "", bridgeerr.Newf(bridgeerr.InvalidInput, "missing field %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", bridgeerr.Newf(bridgeerr.InvalidInput, "field %q must be a string", key)
	}
	return s, nil
}

// BoundedQuery validates a query string's length.
func BoundedQuery(params map[string]any, key string) (string, error) {
	s, err := String(params, key)
	if err != nil {
		return "", err
	}
	if len(s) > MaxQueryChars {
		return "", bridgeerr.Newf(bridgeerr.InvalidInput, "field %q exceeds %d characters", key, MaxQueryChars)
	}
	return s, nil
}

// BoundedSlice validates a slice parameter's element count against max,
// used for notes/automation-points/batch-params caps.
func BoundedSlice(params map[string]any, key string, max int) ([]any, error) {
	raw, ok := params[key]
	if !ok {
		return nil, bridgeerr.Newf(bridgeerr.InvalidInput, "missing field %q", key)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, bridgeerr.Newf(bridgeerr.InvalidInput, "field %q must be an array", key)
	}
	if len(items) > max {
		return nil, bridgeerr.Newf(bridgeerr.InvalidInput, "field %q exceeds %d items", key, max)
	}
	return items, nil
}
