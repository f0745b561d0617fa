// Package textnorm folds free text coming from the legacy schema so that
// comparisons ignore accents and letter case.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks: "Código" becomes "Codigo".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Key is the lower-case, accent-free form used to match identifiers.
func Key(s string) string {
	return strings.ToLower(StripDiacritics(strings.TrimSpace(s)))
}

// Accented and Plain pair up, rune by rune, the accented Latin letters that
// status text is folded over. SQL filters pass the same pair to TRANSLATE so
// the database and FoldStatus agree on every value.
const (
	Accented = "ÁÀÂÄÃÉÈÊËÍÌÎÏÓÒÔÖÕÚÙÛÜÑÇáàâäãéèêëíìîïóòôöõúùûüñç"
	Plain    = "AAAAAEEEEIIIIOOOOOUUUUNCaaaaaeeeeiiiiooooouuuunc"
)

var accentMap = func() map[rune]rune {
	from, to := []rune(Accented), []rune(Plain)
	m := make(map[rune]rune, len(from))
	for i, r := range from {
		m[r] = to[i]
	}
	return m
}()

// FoldStatus is the Go form of UPPER(TRANSLATE(LTRIM(s), Accented, Plain)).
func FoldStatus(s string) string {
	s = strings.TrimLeft(s, " ")
	s = strings.Map(func(r rune) rune {
		if p, ok := accentMap[r]; ok {
			return p
		}
		return r
	}, s)
	return strings.ToUpper(s)
}
