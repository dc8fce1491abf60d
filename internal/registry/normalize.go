package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName puts a display name in NFC form and collapses runs of whitespace,
// so "Ama  Nkwé" and "Ama Nkwé" are stored identically.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}

// foldName maps a name to a search key: no diacritics, lower case, dashes as spaces.
// "Jean-Pierre Ndé" and "jean pierre nde" share a key.
func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = strings.ReplaceAll(strings.ToLower(folded), "-", " ")
	return strings.Join(strings.Fields(folded), " ")
}

// NameMatches reports whether query occurs in name, ignoring case and diacritics.
func NameMatches(name, query string) bool {
	return strings.Contains(foldName(name), foldName(query))
}
