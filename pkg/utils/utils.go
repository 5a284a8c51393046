package utils

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID generates uuid v4
func GenerateUUID() string {
	uuidV4 := uuid.New() // panics on error
	return strings.Map(func(r rune) rune {
		if r == '-' {
			return -1
		}
		return r
	}, uuidV4.String())
}

// GenerateToken generates an opaque project API token
func GenerateToken() string {
	return GenerateUUID() + GenerateUUID()
}

// EncodeOffset base64 encode the offset value
func EncodeOffset(value int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%d", "offset", value)))
}

// GetProjectHashKey generates the redis hash key from a project API token
func GetProjectHashKey(token string) string {
	return fmt.Sprintf("project-token-%s", token)
}

// RoundRate rounds a rate to the given number of decimal places.
func RoundRate(rate float64, places int) float64 {
	shift := math.Pow10(places)
	return math.Round(rate*shift) / shift
}

// Chunk calls fn over [start,end) index ranges of at most chunkSize elements.
func Chunk(chunkSize, total int, fn func(start int, end int) error) error {
	for i := 0; i < total; i += chunkSize {
		end := i + chunkSize
		if end > total {
			end = total
		}
		if err := fn(i, end); err != nil {
			return err
		}
	}
	return nil
}
