package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatID renders a server id the way it appears in paths.
func FormatID(id uint) string { return strconv.FormatUint(uint64(id), 10) }

// ParseID parses a positive server id.
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}
