package repository

import (
	"encoding/json"
	"math"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Property values arrive in whatever shape the backend decoded them into:
// SQLite round-trips through JSON (float64, RFC3339 strings) while SurrealDB
// returns CBOR-decoded integers and CustomDateTime values.

// getString extracts a string value from a map
func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getInt extracts an int value from a map
func getInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(math.Round(v))
	case float32:
		return int(math.Round(float64(v)))
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return int(math.Round(f))
		}
	}
	return 0
}

// getFloat extracts a float value from a map
func getFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return 0
}

// getTime extracts a time value from a map
func getTime(m map[string]any, key string) *time.Time {
	switch v := m[key].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &t
		}
	case time.Time:
		return &v
	case models.CustomDateTime:
		t := v.Time
		return &t
	case *models.CustomDateTime:
		if v != nil {
			t := v.Time
			return &t
		}
	}
	return nil
}
