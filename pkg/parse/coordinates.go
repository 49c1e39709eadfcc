package parse

import (
	"math"
	"strconv"
	"strings"
)

const (
	MaxLatitude  = 90.0
	MaxLongitude = 180.0
)

// Latitude returns nil for missing, non-numeric or out of range values.
func Latitude(v any) *float64 {
	return coordinate(v, MaxLatitude)
}

// Longitude returns nil for missing, non-numeric or out of range values.
func Longitude(v any) *float64 {
	return coordinate(v, MaxLongitude)
}

func coordinate(v any, limit float64) *float64 {
	var value float64
	switch val := v.(type) {
	case nil:
		return nil
	case *float64:
		if val == nil {
			return nil
		}
		value = *val
	case float64:
		value = val
	case float32:
		value = float64(val)
	case int:
		value = float64(val)
	case int8:
		value = float64(val)
	case int16:
		value = float64(val)
	case int32:
		value = float64(val)
	case int64:
		value = float64(val)
	case uint:
		value = float64(val)
	case uint8:
		value = float64(val)
	case uint16:
		value = float64(val)
	case uint32:
		value = float64(val)
	case uint64:
		value = float64(val)
	case []byte:
		return coordinate(string(val), limit)
	case string:
		s := strings.TrimSpace(val)
		if isBlank(s) {
			return nil
		}
		if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		value = parsed
	default:
		return nil
	}

	if math.IsNaN(value) || math.IsInf(value, 0) || math.Abs(value) > limit {
		return nil
	}
	return &value
}
