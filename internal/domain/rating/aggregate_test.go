package rating

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		entries []map[string]interface{}
		want    float64
	}{
		{"empty", nil, 0},
		{"single", []map[string]interface{}{{"rating": 8}}, 8},
		{
			name: "malformed entry ignored and numeric text tolerated",
			entries: []map[string]interface{}{
				{"rating": 5},
				{"rating": "7"},
				{"rating": nil},
			},
			want: 6,
		},
		{
			name:    "rounds to one decimal",
			entries: []map[string]interface{}{{"rating": 10}, {"rating": 3}, {"rating": 3}},
			want:    5.3,
		},
		{
			name:    "half rounds away from zero",
			entries: []map[string]interface{}{{"rating": 10}, {"rating": 3}},
			want:    6.5,
		},
		{
			name: "firestore integer and float encodings",
			entries: []map[string]interface{}{
				{"rating": int64(9)},
				{"rating": float64(6)},
				{"rating": json.Number("3")},
			},
			want: 6,
		},
		{
			name: "only malformed",
			entries: []map[string]interface{}{
				{"comment": "no rating"},
				{"rating": "great"},
				{"rating": true},
				{"rating": math.NaN()},
				nil,
			},
			want: 0,
		},
		{
			name:    "text with whitespace",
			entries: []map[string]interface{}{{"rating": " 4 "}, {"rating": 6}},
			want:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.entries))
		})
	}
}

func TestValid(t *testing.T) {
	assert.False(t, Valid(0))
	assert.True(t, Valid(1))
	assert.True(t, Valid(10))
	assert.False(t, Valid(11))
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 6.7, Round1(20.0/3.0))
	assert.Equal(t, 0.0, Round1(0))
}
