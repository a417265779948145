package textsim

import (
	"regexp"
	"sort"
	"strings"
)

// nameVariations maps a canonical given name or patronymic to spellings and
// nicknames that refer to the same person.
var nameVariations = map[string][]string{
	"александр":     {"alex", "sasha", "саша", "шура", "alexander", "aleksandr"},
	"владимир":      {"vladimir", "vova", "вова", "володя", "volodya", "vlad"},
	"виктор":        {"viktor", "victor", "витя"},
	"леонид":        {"leonid", "leon", "лёня", "леня"},
	"николай":       {"nikolai", "nikolay", "nick", "коля"},
	"михаил":        {"mikhail", "michael", "миша", "misha"},
	"дмитрий":       {"dmitry", "dmitri", "дима", "dima"},
	"сергей":        {"sergey", "sergei", "серёжа", "serezha"},
	"иван":          {"ivan", "ваня", "vanya"},
	"владимирович":  {"vladimirovich", "vladimirovic"},
	"викторович":    {"viktorovich", "viktorovic"},
	"александрович": {"alexandrovich", "aleksandrovich"},
	"николаевич":    {"nikolaevich", "nikolayevich"},
	"михайлович":    {"mikhailovich", "mihailovich"},
	"alexander":     {"alex", "aleksandr", "александр"},
	"vladimir":      {"vlad", "владимир"},
	"victor":        {"viktor", "виктор"},
	"leonid":        {"leon", "леонид"},
	"nicholas":      {"nick", "николай", "nikolai"},
	"michael":       {"mike", "михаил", "mikhail"},
}

// variationKeys is nameVariations' key set in a fixed order.
var variationKeys = func() []string {
	keys := make([]string, 0, len(nameVariations))
	for k := range nameVariations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

var punctRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

func cleanName(s string) string {
	return NormalizeKey(punctRe.ReplaceAllString(s, " "))
}

// TokenNameScore is the token Jaccard of two names plus 0.2 when both have at
// least two words and the same initials. Result is in [0,1].
func TokenNameScore(a, b string) float64 {
	ca, cb := cleanName(a), cleanName(b)
	if ca == "" || cb == "" {
		return 0
	}
	if ca == cb {
		return 1
	}
	wa, wb := wordSet(ca), wordSet(cb)
	inter := 0
	for w := range wa {
		if wb[w] {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	if union == 0 {
		return 0
	}
	score := float64(inter) / float64(union)
	if len(wa) >= 2 && len(wb) >= 2 && sortedInitials(wa) == sortedInitials(wb) {
		score += 0.2
	}
	return min(1, score)
}

// VariationScore checks the nickname and patronymic dictionary, reversed word
// order and long shared word stems. Result is in [0,1].
func VariationScore(a, b string) float64 {
	ca, cb := cleanName(a), cleanName(b)
	if ca == "" || cb == "" {
		return 0
	}
	score := 0.0
	for _, base := range variationKeys {
		for _, v := range nameVariations[base] {
			if (containsWord(ca, base) && containsWord(cb, v)) || (containsWord(cb, base) && containsWord(ca, v)) {
				score = max(score, 0.8)
			}
		}
	}
	wa, wb := strings.Fields(ca), strings.Fields(cb)
	if len(wa) == 2 && len(wb) == 2 && wa[0] == wb[1] && wa[1] == wb[0] {
		score = max(score, 0.9)
	}
	for _, x := range wa {
		for _, y := range wb {
			if len([]rune(x)) >= 4 && len([]rune(y)) >= 4 && (strings.Contains(x, y) || strings.Contains(y, x)) {
				score = max(score, 0.7)
			}
		}
	}
	return score
}

// TransliterationScore compares names across scripts: the token score of the
// Latin forms scaled by 0.9, or 0.9 when the best-effort Cyrillic forms agree.
func TransliterationScore(a, b string) float64 {
	if a == "" || b == "" || (!hasNonASCII(a) && !hasNonASCII(b)) {
		return 0
	}
	best := 0.0
	for _, la := range LatinVariants(a) {
		for _, lb := range LatinVariants(b) {
			best = max(best, 0.9*TokenNameScore(la, lb))
		}
	}
	if cleanName(ToCyrillic(a)) == cleanName(ToCyrillic(b)) {
		best = max(best, 0.9)
	}
	return best
}

// NameScore is the best of the token, variation and transliteration scores.
func NameScore(a, b string) float64 {
	return max(TokenNameScore(a, b), VariationScore(a, b), TransliterationScore(a, b))
}

func wordSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		out[w] = true
	}
	return out
}

func sortedInitials(words map[string]bool) string {
	initials := make([]string, 0, len(words))
	for w := range words {
		initials = append(initials, string([]rune(w)[0]))
	}
	sort.Strings(initials)
	return strings.Join(initials, "")
}

func containsWord(s, word string) bool {
	for _, w := range strings.Fields(s) {
		if w == word {
			return true
		}
	}
	return false
}
