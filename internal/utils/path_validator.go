package utils

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateName validates a single folder or file name: non-empty, bounded,
// no slashes (those separate path segments) and not a relative path marker.
func ValidateName(name string, maxLength int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if len(name) > maxLength {
		return fmt.Errorf("name exceeds maximum length of %d characters", maxLength)
	}

	if strings.Contains(name, "/") {
		return fmt.Errorf("name cannot contain slashes")
	}

	if name == "." || name == ".." {
		return fmt.Errorf("name cannot be '.' or '..'")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("name contains a control character")
		}
	}

	return nil
}

// NormalizeName trims a name and collapses runs of whitespace
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
