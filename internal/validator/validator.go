// Package validator holds the pure input checks shared by registration and
// the request workflow. Functions here never touch storage; uniqueness checks
// (email or PESEL taken) belong to the services that own the stores.
package validator

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)

const passwordSpecials = "@$!%*?&"

// EmailOK reports whether s looks like a deliverable email address.
func EmailOK(s string) bool {
	return emailRe.MatchString(s)
}

// PasswordOK enforces the password policy: 8-40 characters, at least one
// uppercase letter, one lowercase letter, one digit and one special character
// from @$!%*?&, with no characters outside that set.
func PasswordOK(s string) bool {
	if len(s) < 8 || len(s) > 40 {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		default:
			return false
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

// FieldSet reports whether a partial-update field carries a value. Absent or
// blank fields are skipped by update operations, not rejected.
func FieldSet(field *string) bool {
	return field != nil && strings.TrimSpace(*field) != ""
}
