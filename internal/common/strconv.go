package common

import (
	"strconv"
	"strings"
)

// ParseIntDefault parses value as a base-10 integer, returning def when it is blank or malformed.
func ParseIntDefault(value string, def int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return def
	}
	return parsed
}
