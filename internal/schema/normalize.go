// Package schema defines the fixed table layout of the rental workbook.
package schema

import (
	"strings"
	"unicode"
)

// Normalize maps a column header to its field key: lower-cased with all
// whitespace removed, so "Rental ID" becomes "rentalid".
func Normalize(header string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, header)
}
