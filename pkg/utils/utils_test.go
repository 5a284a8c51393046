package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUID(t *testing.T) {
	id := GenerateUUID()
	if len(id) != 32 {
		t.Errorf("GenerateUUID() length = %d, want 32", len(id))
	}
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, GenerateUUID())
}

func TestEncodeOffset(t *testing.T) {
	decoded, err := base64.StdEncoding.DecodeString(EncodeOffset(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, "offset:30", string(decoded))
}

func TestRoundRate(t *testing.T) {
	tests := []struct {
		name   string
		rate   float64
		places int
		want   float64
	}{
		{name: "third", rate: 1.0 / 3.0, places: 4, want: 0.3333},
		{name: "two_thirds_rounds_up", rate: 2.0 / 3.0, places: 4, want: 0.6667},
		{name: "exact", rate: 0.05, places: 4, want: 0.05},
		{name: "zero", rate: 0, places: 4, want: 0},
		{name: "one", rate: 1, places: 4, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundRate(tt.rate, tt.places); got != tt.want {
				t.Errorf("RoundRate() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunk(t *testing.T) {
	var ranges [][2]int
	err := Chunk(1000, 2500, func(start, end int) error {
		ranges = append(ranges, [2]int{start, end})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, [][2]int{{0, 1000}, {1000, 2000}, {2000, 2500}}, ranges)
}

func TestChunkEmpty(t *testing.T) {
	calls := 0
	err := Chunk(1000, 0, func(start, end int) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Zero(t, calls)
}
