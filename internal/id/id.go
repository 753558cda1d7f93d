// Package id formats and parses the identifiers shared between reconciliation
// runs.
package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FirstTradeNum is where numbering starts after a reset.
const FirstTradeNum = 1

// FormatTradeNum returns the human-facing trade number, e.g. "12".
func FormatTradeNum(n int) string {
	return strconv.Itoa(n)
}

// ParseTradeNum parses a trade number. It must be a positive integer.
func ParseTradeNum(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid trade number %q: %w", s, err)
	}
	if n < FirstTradeNum {
		return 0, fmt.Errorf("invalid trade number %q: must be >= %d", s, FirstTradeNum)
	}
	return n, nil
}

// NextTradeNum returns the counter value that continues after the highest
// valid trade number in nums. Unparseable entries are ignored.
func NextTradeNum(nums []string) int {
	maxNum := 0
	for _, s := range nums {
		n, err := ParseTradeNum(s)
		if err != nil {
			continue
		}
		if n > maxNum {
			maxNum = n
		}
	}
	return maxNum + 1
}
