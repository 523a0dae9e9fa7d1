package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const UnnamedName = "Unnamed"

// SanitizeName turns an asset name into a scene-safe identifier.
// Letters, digits and '_' survive, everything else becomes '_'.
// With asciiOnly, diacritics are stripped first and any remaining
// non-ASCII rune is replaced as well.
func SanitizeName(name string, asciiOnly bool) string {
	if name == "" {
		return UnnamedName
	}

	if asciiOnly {
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		if stripped, _, err := transform.String(t, name); err == nil {
			name = stripped
		}
	}

	var sb strings.Builder
	sb.Grow(len(name) + 1)
	for _, r := range name {
		keep := r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
		if asciiOnly && r > unicode.MaxASCII {
			keep = false
		}
		if keep {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}

	s := sb.String()
	if s == "" {
		return UnnamedName
	}
	if first := []rune(s)[0]; unicode.IsDigit(first) {
		s = "_" + s
	}
	return s
}
