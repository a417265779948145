package textsim

import (
	"strings"
	"unicode"
)

var cyrToLat = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
	'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts",
	'ч': "ch", 'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu",
	'я': "ya",
}

// Alternate spellings seen in real addresses (zh→j, kh→h and so on).
var cyrToLatAlt = map[rune]string{
	'ж': "j", 'х': "h", 'ц': "c", 'ч': "c", 'ш': "s", 'щ': "s", 'ю': "u", 'я': "a",
}

// Latin sequences tried longest first when mapping back to Cyrillic.
var latToCyr = []struct {
	lat string
	cyr string
}{
	{"shch", "щ"},
	{"zh", "ж"}, {"kh", "х"}, {"ts", "ц"}, {"ch", "ч"}, {"sh", "ш"}, {"yu", "ю"}, {"ya", "я"}, {"yo", "ё"},
	{"a", "а"}, {"b", "б"}, {"v", "в"}, {"g", "г"}, {"d", "д"}, {"e", "е"}, {"z", "з"},
	{"i", "и"}, {"y", "ы"}, {"k", "к"}, {"l", "л"}, {"m", "м"}, {"n", "н"}, {"o", "о"},
	{"p", "п"}, {"r", "р"}, {"s", "с"}, {"t", "т"}, {"u", "у"}, {"f", "ф"},
	{"h", "х"}, {"c", "к"}, {"j", "дж"}, {"w", "в"}, {"x", "кс"}, {"q", "к"},
}

// ToLatin transliterates Cyrillic letters with the primary table and lower-cases
// the result. Non-Cyrillic runes pass through.
func ToLatin(s string) string {
	return transliterate(s, nil)
}

// ToLatinAlt is ToLatin with the alternate spellings applied first.
func ToLatinAlt(s string) string {
	return transliterate(s, cyrToLatAlt)
}

func transliterate(s string, override map[rune]string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if v, ok := override[r]; ok {
			b.WriteString(v)
			continue
		}
		if v, ok := cyrToLat[r]; ok {
			b.WriteString(v)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCyrillic maps Latin text back to Cyrillic, longest sequence first. Several
// Cyrillic spellings collapse onto one Latin form, so the result is only a
// best-effort guess and must not be used as a primary signal.
func ToCyrillic(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for i := 0; i < len(s); {
		matched := false
		for _, p := range latToCyr {
			if strings.HasPrefix(s[i:], p.lat) {
				b.WriteString(p.cyr)
				i += len(p.lat)
				matched = true
				break
			}
		}
		if !matched {
			r := []rune(s[i:])[0]
			b.WriteRune(r)
			i += len(string(r))
		}
	}
	return b.String()
}

// LatinVariants returns the distinct Latin spellings of s: the primary and
// alternate transliterations, in that order. Latin input yields itself.
func LatinVariants(s string) []string {
	primary := ToLatin(s)
	alt := ToLatinAlt(s)
	if alt == primary {
		return []string{primary}
	}
	return []string{primary, alt}
}

// StripVowels drops Latin vowels, used for consonant-skeleton matching of
// local parts such as "dmtrv".
func StripVowels(s string) string {
	return strings.Map(func(r rune) rune {
		switch unicode.ToLower(r) {
		case 'a', 'e', 'i', 'o', 'u':
			return -1
		}
		return r
	}, s)
}
