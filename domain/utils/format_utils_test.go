package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatShortNotation(t *testing.T) {
	tests := []struct {
		name     string
		value    int64
		expected string
	}{
		{name: "zero", value: 0, expected: "0"},
		{name: "single ticket price", value: 10, expected: "10"},
		{name: "exactly 1k", value: 1000, expected: "1.0k"},
		{name: "9.9k", value: 9900, expected: "9.9k"},
		{name: "10k", value: 10000, expected: "10k"},
		{name: "250k pool", value: 250000, expected: "250k"},
		{name: "1.5M", value: 1500000, expected: "1.50M"},
		{name: "2B", value: 2000000000, expected: "2.00B"},
		{name: "3T", value: 3000000000000, expected: "3.00T"},
		{name: "negative", value: -15000, expected: "-15k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatShortNotation(tt.value))
		})
	}
}
