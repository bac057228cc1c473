// Package rating computes derived average ratings from embedded review lists.
package rating

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field is the key holding the numeric rating in a stored review entry.
const Field = "rating"

const (
	MinScore = 1
	MaxScore = 10
)

// AggregateFunc turns raw review entries into a single average.
type AggregateFunc func(entries []map[string]interface{}) float64

// Aggregate returns the mean of the valid ratings in entries rounded to one
// decimal place, or 0 when there are none. Entries whose rating is missing or
// not numeric are skipped; numeric text such as "7" is accepted.
func Aggregate(entries []map[string]interface{}) float64 {
	var (
		sum   float64
		count int
	)
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		v, ok := toFloat(entry[Field])
		if !ok {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0
	}
	return Round1(sum / float64(count))
}

// Valid reports whether score is an accepted review rating.
func Valid(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
