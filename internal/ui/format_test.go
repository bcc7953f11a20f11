package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1000000, "1,000,000"},
		{14302, "14,302"},
		{-1000, "-1,000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCount(tt.input))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "30s", FormatDuration(30*time.Second))
	assert.Equal(t, "3m 17s", FormatDuration(3*time.Minute+17*time.Second))
	assert.Equal(t, "1h 02m 03s", FormatDuration(1*time.Hour+2*time.Minute+3*time.Second))
}
