package patient

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// capitalize title-cases the first letter and leaves the rest untouched.
func (s *Store) capitalize(value string) string {
	if value == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError {
		return value
	}
	return s.title.String(string(r)) + value[size:]
}

func hasFoldedPrefix(fold cases.Caser, value, prefix string) bool {
	return strings.HasPrefix(fold.String(value), fold.String(prefix))
}
