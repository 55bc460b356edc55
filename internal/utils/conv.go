package utils

import (
	"strconv"
	"strings"
)

// AtoiOr parses a form value, returning fallback for anything that is not an integer.
func AtoiOr(s string, fallback int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return i
}
