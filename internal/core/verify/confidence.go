package verify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/idresolve/internal/core/model"
	"github.com/agenthands/idresolve/internal/core/textsim"
)

// Phrases that mark journal titles, publishers and boilerplate picked up as names.
var nameNoise = []string{
	"вестник", "журнал", "бюллетень", "bulletin", "journal", "review",
	"proceedings", "publication", "издание", "научный", "scientific", "medical",
	"issn", "volume", "issue", "article", "study", "analysis",
	"university press", "editorial", "editor", "редакция",
	"russian federation", "российская федерация",
	"state medical university", "original study", "research involving",
}

var (
	technicalRe = regexp.MustCompile(`(^|[^\p{L}])(issn|doi|volume|vol\.|no\.|pp\.|page|стр\.)([^\p{L}]|$)`)

	ruFull      = regexp.MustCompile(`^[А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+$`)
	ruInitials  = regexp.MustCompile(`^[А-ЯЁ][а-яё]+\s+[А-ЯЁ]\.\s?[А-ЯЁ]\.$`)
	ruInitFirst = regexp.MustCompile(`^[А-ЯЁ]\.\s?[А-ЯЁ]\.\s+[А-ЯЁ][а-яё]+$`)
	ruTwo       = regexp.MustCompile(`^[А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+$`)
	enFull      = regexp.MustCompile(`^[A-Z][a-z]+\s+[A-Z][a-z]+\s+[A-Z][a-z]+$`)
	enTwo       = regexp.MustCompile(`^[A-Z][a-z]+\s+[A-Z][a-z]+$`)
	enLastComma = regexp.MustCompile(`^[A-Z][a-z]+,\s*[A-Z]\.[A-Z]\.$`)
	enInitFirst = regexp.MustCompile(`^[A-Z]\.[A-Z]\.\s+[A-Z][a-z]+$`)

	cyrillicRe = regexp.MustCompile(`[А-Яа-яЁё]`)
	latinRe    = regexp.MustCompile(`[A-Za-z]`)
	digitRe    = regexp.MustCompile(`\d`)
	specialRe  = regexp.MustCompile(`[<>{}\[\]()"']`)
)

// ScoreName estimates how likely an extracted string is a personal name.
// Name shapes set the base score; a target address whose local part contains
// the name (directly or transliterated) raises it, while very long strings,
// single words, digits and markup characters lower it.
func ScoreName(name, targetAddress string) float64 {
	clean := strings.TrimSpace(name)
	if utf8.RuneCountInString(clean) < 3 {
		return 0
	}
	lower := strings.ToLower(clean)
	for _, noise := range nameNoise {
		if strings.Contains(lower, noise) {
			return 0.01
		}
	}
	if technicalRe.MatchString(lower) {
		return 0.02
	}

	var conf float64
	cyrillic := cyrillicRe.MatchString(clean)
	switch {
	case cyrillic:
		switch {
		case ruFull.MatchString(clean):
			conf = 0.9
		case ruInitials.MatchString(clean), ruInitFirst.MatchString(clean):
			conf = 0.85
		case ruTwo.MatchString(clean):
			conf = 0.8
		default:
			conf = 0.3
		}
	case latinRe.MatchString(clean):
		switch {
		case enFull.MatchString(clean):
			conf = 0.75
		case enTwo.MatchString(clean), enLastComma.MatchString(clean), enInitFirst.MatchString(clean):
			conf = 0.7
		default:
			conf = 0.25
		}
	default:
		return 0.05
	}

	if conf > 0.5 && targetAddress != "" {
		local := textsim.LocalPart(targetAddress)
		parts := textsim.LetterTokens(lower)
		if len(parts) >= 2 {
			for _, p := range parts[:2] {
				if utf8.RuneCountInString(p) > 2 && strings.Contains(local, p) {
					conf += 0.15
					break
				}
			}
			if cyrillic {
				conf += transliterationBonus(parts, local)
			}
		}
	}

	if utf8.RuneCountInString(clean) > 50 {
		conf *= 0.6
	}
	if len(strings.Fields(clean)) < 2 {
		conf *= 0.4
	}
	if digitRe.MatchString(clean) {
		conf *= 0.3
	}
	if specialRe.MatchString(clean) {
		conf *= 0.2
	}
	return model.Clamp01(conf)
}

// transliterationBonus rewards Cyrillic name parts that show up in a Latin
// local part under either transliteration scheme or as a consonant skeleton.
func transliterationBonus(parts []string, local string) float64 {
	if local == "" {
		return 0
	}
	bonus := 0.0
	found := 0
	for _, part := range parts[:min(2, len(parts))] {
		if utf8.RuneCountInString(part) < 2 {
			continue
		}
		variants := textsim.LatinVariants(part)
		for _, v := range variants {
			if sk := textsim.StripVowels(v); len(sk) >= 2 && sk != v {
				variants = append(variants, sk)
			}
		}
		for _, v := range variants {
			if len(v) < 3 {
				continue
			}
			if strings.Contains(local, v) {
				bonus += 0.15
				found++
				break
			}
			if textsim.PartialRatio(v, local) > 85 {
				bonus += 0.1
				found++
				break
			}
			if strings.Contains(local, v[:3]) || strings.Contains(local, v[len(v)-3:]) {
				bonus += 0.05
				found++
				break
			}
		}
	}
	if found >= 2 {
		bonus += 0.1
	}
	return min(bonus, 0.25)
}

// ScoreAddress is 1 for the target address itself and 0.6 otherwise.
func ScoreAddress(address, targetAddress string) float64 {
	if targetAddress != "" && textsim.NormalizeAddress(address) == textsim.NormalizeAddress(targetAddress) {
		return 1
	}
	return 0.6
}

var (
	institutionWords = []string{"университет", "university", "институт", "institute", "академия", "academy"}
	academicRoles    = []string{"профессор", "professor", "доцент", "доктор", "doctor", "кандидат"}
)

// ScoreOrganization favours academic institutions and longer, specific names.
func ScoreOrganization(org string) float64 {
	conf := 0.5
	if containsAny(strings.ToLower(org), institutionWords) {
		conf += 0.2
	}
	if utf8.RuneCountInString(org) > 20 {
		conf += 0.1
	}
	return model.Clamp01(conf)
}

// ScorePosition favours academic titles.
func ScorePosition(position string) float64 {
	conf := 0.5
	if containsAny(strings.ToLower(position), academicRoles) {
		conf += 0.2
	}
	return model.Clamp01(conf)
}

// Components returns the confidence components an extracted value starts with.
func Components(field model.FieldType, value, targetAddress string) model.ConfidenceComponents {
	switch field {
	case model.FieldName:
		return model.ConfidenceComponents{Source: ScoreName(value, targetAddress), Context: 0.5, Validation: 0.5, Consistency: 0.5}
	case model.FieldContactAddress:
		return model.ConfidenceComponents{Source: ScoreAddress(value, targetAddress), Context: 0.5, Validation: 0.9, Consistency: 0.7}
	case model.FieldOrganization:
		return model.ConfidenceComponents{Source: ScoreOrganization(value), Context: 0.5, Validation: 0.5, Consistency: 0.5}
	case model.FieldPosition:
		return model.ConfidenceComponents{Source: ScorePosition(value), Context: 0.5, Validation: 0.5, Consistency: 0.5}
	}
	return model.Uniform(0.5)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
