package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	t.Run("trims and drops duplicates and empties", func(t *testing.T) {
		got := DedupeAndTrim([]string{" kafka-1:9092 ", "kafka-2:9092", "kafka-1:9092", "", "  "})
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, got)
	})

	t.Run("preserves order", func(t *testing.T) {
		got := DedupeAndTrim([]string{"c", "a", "b", "a"})
		assert.Equal(t, []string{"c", "a", "b"}, got)
	})

	t.Run("empty input unchanged", func(t *testing.T) {
		assert.Empty(t, DedupeAndTrim(nil))
	})
}
