package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"zero value", 0, "0.00"},
		{"integer", 123, "123.00"},
		{"negative", -456.5, "-456.50"},
		{"exact half rounds to even", 0.125, "0.12"},
		{"one decimal", 13.4, "13.40"},
		{"large", 1210.0, "1210.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "0", formatInt(0))
	assert.Equal(t, "1460", formatInt(1460))
	assert.Equal(t, "-3", formatInt(-3))
}
