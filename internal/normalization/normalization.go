package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return normalized
}

// TrimInputString keeps the original casing. Titles and locations must not be
// lowercased on the way in.
func TrimInputString(input string) string {
	return strings.TrimSpace(input)
}
