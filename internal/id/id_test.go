package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTradeNum(t *testing.T) {
	assert.Equal(t, "1", FormatTradeNum(1))
	assert.Equal(t, "42", FormatTradeNum(42))
}

func TestParseTradeNum(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"1", 1},
		{"42", 42},
		{" 7 ", 7},
	}
	for _, tt := range tests {
		got, err := ParseTradeNum(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseTradeNum_Errors(t *testing.T) {
	for _, input := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := ParseTradeNum(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestNextTradeNum(t *testing.T) {
	tests := []struct {
		nums []string
		want int
	}{
		{nil, 1},
		{[]string{"1", "2", "2"}, 3},
		{[]string{"7", "bogus", "3"}, 8},
		{[]string{"", "0"}, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextTradeNum(tt.nums), "%v", tt.nums)
	}
}
