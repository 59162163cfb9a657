package gateway

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool { return emailPattern.MatchString(strings.TrimSpace(s)) }

// ValidPhone reports whether s contains only digits, spaces, dashes and
// parentheses with an optional leading plus.
func ValidPhone(s string) bool { return phonePattern.MatchString(strings.TrimSpace(s)) }
