package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/models"
)

var (
	usernameRe = regexp.MustCompile(models.UsernamePattern)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// UsernameProblem returns the message key describing why username is not
// acceptable, or "" when it is.
func UsernameProblem(username string) string {
	if !usernameRe.MatchString(username) {
		return i18n.UsernameInvalid
	}
	if strings.EqualFold(username, models.ReservedUsername) {
		return i18n.UsernameReserved
	}
	return ""
}

// ValidSlug reports whether s is a tag slug.
func ValidSlug(s string) bool {
	return slugRe.MatchString(s)
}

func validatePassword(v *ValidationError, field, password string) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		v.Add(field, i18n.FieldTooShort, MinPasswordLength)
	}
	numeric := password != ""
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		v.Add(field, i18n.PasswordNumeric)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// escapeLike escapes LIKE wildcards; queries use ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
