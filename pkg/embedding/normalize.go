package embedding

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoerceVector converts one decoded provider row into a vector. A nested row
// (per-token output) contributes its first element. Every element is coerced
// to a number; anything that is not numeric is ErrBadResponse.
func CoerceVector(row interface{}) ([]float32, error) {
	values, ok := row.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrBadResponse, row)
	}
	for len(values) > 0 {
		inner, nested := values[0].([]interface{})
		if !nested {
			break
		}
		values = inner
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrBadResponse)
	}

	vec := make([]float32, len(values))
	for i, v := range values {
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrBadResponse, i, err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}

// CoerceBatch splits a decoded batch response into vectors. A flat numeric
// array is accepted as the single row of a one-item batch.
func CoerceBatch(resp interface{}, inputs int) ([][]float32, error) {
	rows, ok := resp.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrBadResponse, resp)
	}
	if inputs == 1 && len(rows) > 0 && isScalar(rows[0]) {
		vec, err := CoerceVector(resp)
		if err != nil {
			return nil, err
		}
		return [][]float32{vec}, nil
	}

	out := make([][]float32, 0, len(rows))
	for i, row := range rows {
		vec, err := CoerceVector(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, vec)
	}
	return out, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("non-numeric %T", v)
	}
}

func isScalar(v interface{}) bool {
	_, nested := v.([]interface{})
	return !nested
}

// normalizeVector scales vec to unit length. Zero vectors are returned as is.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
