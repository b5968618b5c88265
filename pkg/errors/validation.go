package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxQueryLength is the longest search query accepted, in characters.
const MaxQueryLength = 200

// ValidateQuery checks a search query before it is sent to the provider.
// Leading and trailing whitespace is ignored.
//
//   - No empty (or whitespace-only) queries
//   - No control characters
//   - Maximum length of MaxQueryLength characters
func ValidateQuery(query string) error {
	q := strings.TrimSpace(query)
	if q == "" {
		return New(ErrCodeInvalidQuery, "query cannot be empty")
	}
	if n := utf8.RuneCountInString(q); n > MaxQueryLength {
		return New(ErrCodeInvalidQuery, "query too long (%d characters, max %d)", n, MaxQueryLength)
	}
	for _, r := range q {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidQuery, "query contains invalid control characters")
		}
	}
	return nil
}

// ValidateDimension checks a positive pixel dimension such as a tile or
// viewport width.
func ValidateDimension(name string, v float64) error {
	if v <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %v", name, v)
	}
	return nil
}
