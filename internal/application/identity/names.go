package identity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// normalizeName collapses whitespace and title-cases a person's name.
// Casers keep state, so one is built per call.
func normalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return cases.Title(language.BrazilianPortuguese).String(strings.ToLower(strings.Join(fields, " ")))
}
