package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Nanosecond, "500.000ns"},
		{1500 * time.Nanosecond, "1.500µs"},
		{2 * time.Millisecond, "2.000ms"},
		{1500 * time.Millisecond, "1.500s"},
		{90 * time.Second, "1.500m"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestTreeStatsBalanced(t *testing.T) {
	assert.True(t, TreeStats{MaxImbalance: 1}.Balanced())
	assert.False(t, TreeStats{MaxImbalance: 2}.Balanced())
}
