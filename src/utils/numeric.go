package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToFloat coerces a value of unknown wire type into a float64. Aggregator
// payloads report numeric fields inconsistently: sometimes numbers,
// sometimes quoted numbers, sometimes empty strings or missing entirely.
// Anything unparseable, NaN or infinite comes back as 0 so downstream
// arithmetic stays finite.
func ToFloat(v interface{}) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return sanitize(n)
	case float32:
		return sanitize(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return sanitize(f)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return sanitize(f)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
