// Package textsim holds the string normalization, transliteration and fuzzy
// similarity helpers shared by profile verification and candidate ranking.
package textsim

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeKey is the comparison form of a value: NFC, lower case, ё folded
// to е, single spaces.
func NormalizeKey(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "ё", "е")
	return collapseSpaces(s)
}

// NormalizeName title-cases purely alphabetic words and collapses spaces.
// Words with punctuation such as initials are kept as written.
func NormalizeName(s string) string {
	words := strings.Fields(norm.NFC.String(s))
	caser := cases.Title(language.Und)
	for i, w := range words {
		if isAlpha(w) {
			words[i] = caser.String(w)
		}
	}
	return strings.Join(words, " ")
}

var orgAbbreviations = map[string]string{
	"МГУ":   "МГУ",
	"СПБГУ": "СПбГУ",
	"РАН":   "РАН",
	"РАМН":  "РАМН",
	"ФГБУ":  "ФГБУ",
	"ГУ":    "ГУ",
	"НИИ":   "НИИ",
	"НИИР":  "НИИР",
	"MIT":   "MIT",
	"UCLA":  "UCLA",
}

// NormalizeOrganization collapses spaces and restores the canonical spelling
// of known abbreviations.
func NormalizeOrganization(s string) string {
	words := strings.Fields(norm.NFC.String(s))
	for i, w := range words {
		core, tail := splitTrailingPunct(w)
		if canon, ok := orgAbbreviations[strings.ToUpper(core)]; ok {
			words[i] = canon + tail
		}
	}
	return strings.Join(words, " ")
}

// positionQualifiers expand only when the next token is a professor title,
// so "assoc" on its own is left alone.
var positionQualifiers = map[string]string{
	"assoc":  "associate",
	"assoc.": "associate",
	"asst":   "assistant",
	"asst.":  "assistant",
}

var positionWords = map[string]string{
	"prof":  "professor",
	"prof.": "professor",
	"dr":    "doctor",
	"dr.":   "doctor",
	"проф.": "профессор",
	"доц.":  "доцент",
}

// NormalizePosition lower-cases a role title and expands common abbreviations.
// Expansion works on whole tokens.
func NormalizePosition(s string) string {
	words := strings.Fields(NormalizeKey(s))
	for i, w := range words {
		if full, ok := positionWords[w]; ok {
			words[i] = full
		}
	}
	for i := 0; i+1 < len(words); i++ {
		if full, ok := positionQualifiers[words[i]]; ok && words[i+1] == "professor" {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// NormalizeAddress lower-cases and trims a contact address.
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// Normalize dispatches on the field name used by the data model.
func Normalize(field, value string) string {
	switch field {
	case "name":
		return NormalizeName(value)
	case "contact_address":
		return NormalizeAddress(value)
	case "organization":
		return NormalizeOrganization(value)
	case "position":
		return NormalizePosition(value)
	}
	return collapseSpaces(value)
}

// Tokens splits s into lower-case runs of letters and digits.
func Tokens(s string) []string {
	return strings.FieldsFunc(NormalizeKey(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// LetterTokens is Tokens restricted to letters.
func LetterTokens(s string) []string {
	return strings.FieldsFunc(NormalizeKey(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isAlpha(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func splitTrailingPunct(w string) (string, string) {
	i := len(w)
	for i > 0 {
		r := rune(w[i-1])
		if r >= 0x80 || unicode.IsLetter(r) || unicode.IsDigit(r) {
			break
		}
		i--
	}
	return w[:i], w[i:]
}
