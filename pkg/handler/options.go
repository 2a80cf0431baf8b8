package handler

import (
	"fmt"
	"strconv"
)

// Options maps option names to values for a single collect/render request.
type Options map[string]any

// MergeOptions overlays each layer on defaults, later layers winning key by
// key. None of the inputs are modified.
func MergeOptions(defaults Options, layers ...Options) Options {
	size := len(defaults)
	for _, layer := range layers {
		size += len(layer)
	}
	out := make(Options, size)
	for key, value := range defaults {
		out[key] = value
	}
	for _, layer := range layers {
		for key, value := range layer {
			out[key] = value
		}
	}
	return out
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("handler: %v is not a whole number", n)
		}
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	case nil:
		return 0, fmt.Errorf("handler: missing value")
	default:
		return 0, fmt.Errorf("handler: unsupported number %v (%T)", v, v)
	}
}
