package auth

import (
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// ValidateEmail reports whether s has a local@domain.tld shape.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidatePassword checks the password policy and returns the first failing
// reason: length, then lowercase, then uppercase, then special character.
func ValidatePassword(s string) (bool, string) {
	if len(s) < 8 {
		return false, "password must be at least 8 characters long"
	}

	var hasLower, hasUpper bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}

	if !hasLower {
		return false, "password must contain at least one lowercase letter"
	}
	if !hasUpper {
		return false, "password must contain at least one uppercase letter"
	}
	if !strings.ContainsAny(s, passwordSpecials) {
		return false, "password must contain at least one special character"
	}

	return true, ""
}
