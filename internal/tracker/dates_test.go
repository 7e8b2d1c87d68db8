package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2024-01-15": "01/15/2024",
		"":           "",
		"01/15/2024": "01/15/2024",
		"2024-01":    "2024-01",
		"24-01-15":   "24-01-15",
		"abcd-01-15": "abcd-01-15",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDate(in), in)
	}
}

func TestFallbackSubject(t *testing.T) {
	now := time.Date(2025, 7, 4, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "DPT Tracker - 07/04/2025", FallbackSubject("DPT Tracker", now))
}
