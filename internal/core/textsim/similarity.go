package textsim

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Similarity scores two values on a 0..100 scale. It is symmetric, returns 100
// for values that normalize to the same key and otherwise takes the best of
// the edit-distance ratio, the token-sort ratio and an initials-aware token
// alignment. Values written in different scripts are also compared through
// their Latin transliteration, capped at 95.
func Similarity(a, b string) float64 {
	ka, kb := NormalizeKey(a), NormalizeKey(b)
	if ka == kb {
		return 100
	}
	if ka == "" || kb == "" {
		return 0
	}
	score := similarity(ka, kb)
	if score < 95 && (hasNonASCII(ka) || hasNonASCII(kb)) {
		if t := similarity(ToLatin(ka), ToLatin(kb)); t > score {
			score = min(t, 95)
		}
	}
	return score
}

func similarity(a, b string) float64 {
	if a == b {
		return 100
	}
	score := Ratio(a, b)
	if ts := tokenSortRatio(a, b); ts > score {
		score = ts
	}
	if is := initialsRatio(a, b); is > score {
		score = is
	}
	return score
}

// Ratio is 100·(1 − d/max(len)) where d is the rune-level Levenshtein distance.
func Ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

// tokenSortRatio compares the sorted tokens of already normalized keys, so
// fuzzywuzzy's own ASCII folding and processing stay off. Both argument
// orders are tried because the matcher is not symmetric on equal lengths.
func tokenSortRatio(a, b string) float64 {
	if len(Tokens(a)) == 0 || len(Tokens(b)) == 0 {
		return 0
	}
	return float64(max(fuzzy.TokenSortRatio(a, b, false, false), fuzzy.TokenSortRatio(b, a, false, false)))
}

// initialsRatio aligns tokens of two personal names allowing a single-letter
// token to stand for any token that starts with it ("Petrov I." ~ "Ivan
// Petrov"). Each initial and each unmatched extra token costs 5 points.
func initialsRatio(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) < 2 || len(tb) < 2 {
		return 0
	}
	return max(alignTokens(ta, tb), alignTokens(tb, ta))
}

func alignTokens(short, long []string) float64 {
	if len(short) > len(long) || len(long)-len(short) > 1 {
		return 0
	}
	used := make([]bool, len(long))
	exactFull := 0
	initials := 0
	// Full tokens first so initials cannot steal their partners.
	order := make([]int, 0, len(short))
	for i, t := range short {
		if utf8.RuneCountInString(t) > 1 {
			order = append(order, i)
		}
	}
	for i, t := range short {
		if utf8.RuneCountInString(t) == 1 {
			order = append(order, i)
		}
	}
	for _, i := range order {
		t := short[i]
		j := indexUnused(long, used, func(u string) bool { return u == t })
		if j >= 0 {
			used[j] = true
			if utf8.RuneCountInString(t) > 1 {
				exactFull++
			}
			continue
		}
		j = indexUnused(long, used, func(u string) bool { return initialOf(t, u) || initialOf(u, t) })
		if j < 0 {
			return 0
		}
		used[j] = true
		initials++
	}
	if exactFull == 0 {
		return 0
	}
	extra := len(long) - len(short)
	return max(0, 100-5*float64(initials+extra))
}

func indexUnused(tokens []string, used []bool, match func(string) bool) int {
	for j, u := range tokens {
		if !used[j] && match(u) {
			return j
		}
	}
	return -1
}

// initialOf reports whether initial is a single letter that opens word.
func initialOf(initial, word string) bool {
	if utf8.RuneCountInString(initial) != 1 || utf8.RuneCountInString(word) < 2 {
		return false
	}
	return strings.HasPrefix(word, initial)
}

func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

// PartialRatio is fuzzywuzzy's partial ratio: the best match of the shorter
// string against same-length windows of the longer one.
func PartialRatio(a, b string) float64 {
	if a == "" || b == "" {
		if a == b {
			return 100
		}
		return 0
	}
	return float64(max(fuzzy.PartialRatio(a, b), fuzzy.PartialRatio(b, a)))
}
