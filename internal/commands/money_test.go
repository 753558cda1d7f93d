package commands

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"300", "$300.00"},
		{"1234.5", "$1,234.50"},
		{"0.005", "$0.01"},
		{"-340", "-$340.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, usd(decimal.RequireFromString(tt.in)))
		})
	}
}
