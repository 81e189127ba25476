package util

import (
	"strconv"
	"strings"
)

// ParseSize parses a human-readable size ("4MB", "512KB", "1GB", "4096")
// into bytes, returning defaultBytes for empty or unparseable input.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}

	var multiplier int64 = 1
	for _, u := range []struct {
		suffix string
		mult   int64
	}{{"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10}, {"B", 1}} {
		if strings.HasSuffix(s, u.suffix) {
			multiplier = u.mult
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			break
		}
	}

	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil || val < 0 {
		return defaultBytes
	}
	return val * multiplier
}
