// Package utils provides small helpers shared by the HTTP layer and the
// configuration loader: JSON responses, client IPs, origin matching and
// human-readable size parsing.
package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// sizeRegex matches a number followed optionally by a unit string.
// It allows flexible spacing between the number and the unit.
var sizeRegex = regexp.MustCompile(`^(\d+)\s*([a-zA-Z]*)$`)

// unitMultipliers maps data size units to their byte values using binary prefixes.
// 1 KB = 1024 Bytes, 1 MB = 1024 * 1024 Bytes.
var unitMultipliers = map[string]int64{
	"":   1,
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
}

// ParseSize converts strings such as "64KB", "1 MB" or "512" into bytes.
// Units are case-insensitive.
func ParseSize(sizeStr string) (int64, error) {
	rawStr := strings.TrimSpace(strings.ToUpper(sizeStr))
	if rawStr == "" {
		return 0, fmt.Errorf("empty size")
	}

	matches := sizeRegex.FindStringSubmatch(rawStr)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid size format %q", sizeStr)
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid numeric value in %q", sizeStr)
	}

	multiplier, ok := unitMultipliers[matches[2]]
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q in %q", matches[2], sizeStr)
	}

	return value * multiplier, nil
}

// SizeToBytes is ParseSize with a fallback for invalid input.
func SizeToBytes(sizeStr string, defaultValue int64) int64 {
	n, err := ParseSize(sizeStr)
	if err != nil {
		return defaultValue
	}
	return n
}
