package auth

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var emailCaser = cases.Lower(language.Und)

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return emailCaser.String(strings.TrimSpace(email))
}
