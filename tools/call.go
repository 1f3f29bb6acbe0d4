package tools

import (
	"encoding/json"
	"fmt"
	"math"
)

// Call is one named, argument-bearing tool invocation. It is immutable once
// dispatched; the dispatcher and handlers treat Args as read-only.
type Call struct {
	// Name is the wire name of the tool, e.g. "eval_r".
	Name string

	// Args is the decoded argument bag. Values carry JSON shapes:
	// string, bool, float64, json.Number.
	Args map[string]any
}

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: missing required argument %q", ErrInvalidArgument, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %q must be a string", ErrInvalidArgument, key)
	}
	return s, nil
}

// optionalStringArg extracts an optional string argument. The bool reports
// whether the argument was present.
func optionalStringArg(args map[string]any, key string) (string, bool, error) {
	v, ok := args[key]
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("%w: argument %q must be a string", ErrInvalidArgument, key)
	}
	return s, true, nil
}

// optionalBoolArg extracts an optional bool argument, returning def when
// absent.
func optionalBoolArg(args map[string]any, key string, def bool) (bool, error) {
	v, ok := args[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: argument %q must be a boolean", ErrInvalidArgument, key)
	}
	return b, nil
}

// optionalIntArg extracts an optional integer argument. JSON carries numbers
// as float64 (or json.Number when decoded with UseNumber); both are accepted
// as long as the value is integral.
func optionalIntArg(args map[string]any, key string) (int, bool, error) {
	v, ok := args[key]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false, fmt.Errorf("%w: argument %q must be an integer", ErrInvalidArgument, key)
		}
		// Conversion past the int range would silently wrap.
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false, fmt.Errorf("%w: argument %q is out of range", ErrInvalidArgument, key)
		}
		return int(n), true, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false, fmt.Errorf("%w: argument %q must be an integer", ErrInvalidArgument, key)
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return 0, false, fmt.Errorf("%w: argument %q is out of range", ErrInvalidArgument, key)
		}
		return int(i), true, nil
	case int:
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("%w: argument %q must be an integer", ErrInvalidArgument, key)
	}
}
