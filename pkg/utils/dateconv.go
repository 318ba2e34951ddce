package utils

import (
	"fmt"
	"time"
)

const expDateLayout = "01/06" // MM/yy

// ParseExpDate converts a card expiry in MM/yy form into the last minute of
// that month; the card is valid through the whole expiry month.
func ParseExpDate(s string) (time.Time, error) {
	t, err := time.Parse(expDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiry date %q: %w", s, err)
	}
	return t.AddDate(0, 1, 0).Add(-time.Minute), nil
}
