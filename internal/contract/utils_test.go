package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, HighColor, SeverityColor("high"))
	assert.Equal(t, MediumColor, SeverityColor("medium"))
	assert.Equal(t, LowColor, SeverityColor("low"))
	assert.Equal(t, CriticalColor, SeverityColor("critical"))
	assert.Equal(t, InfoColor, SeverityColor("info"))
	assert.NotNil(t, SeverityColor("something-else"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		maxWidth int
		expected string
	}{
		{"short label untouched", "abc", 10, "abc"},
		{"exact width untouched", "abcdefghij", 10, "abcdefghij"},
		{"long label keeps tail", "abcdefghijklmnop", 10, "...jklmnop"},
		{"tiny width untouched", "abcdefghij", 3, "abcdefghij"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.label, tt.maxWidth))
		})
	}
}
