// Package textnorm folds names so that "Uniforme Básico" and "uniforme basico"
// compare equal. Used for duplicate detection and color lookup.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Normalizar removes diacritics, case-folds and collapses whitespace.
func Normalizar(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = folder.String(out)
	return strings.Join(strings.Fields(out), " ")
}

// Iguais reports whether a and b are the same name once normalized.
func Iguais(a, b string) bool {
	return Normalizar(a) == Normalizar(b)
}

// Contem reports whether the normalized haystack contains the normalized needle.
// An empty needle never matches.
func Contem(haystack, needle string) bool {
	n := Normalizar(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Normalizar(haystack), n)
}
