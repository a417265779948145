package textsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_IdenticalAfterNormalization(t *testing.T) {
	assert.Equal(t, 100.0, Similarity("Ivan  Petrov", "ivan petrov"))
	assert.Equal(t, 100.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("Ivan Petrov", ""))
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Ivan Petrov", "Petrov I."},
		{"Ivan Petrov", "Ivan Smith"},
		{"Иван Петров", "Ivan Petrov"},
		{"Moscow State University", "Moscow State Univ"},
		{"a", "abcdef"},
		{"", "x"},
		{"ivan.petrov@uni.ru", "i.petrov@uni.ru"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	inputs := []string{"", " ", "a", "Ivan Petrov", "И", "!!!", "a b c d e f g h i j k l m n o p q r s t u v w x y z", "Петров И. В."}
	for _, a := range inputs {
		for _, b := range inputs {
			s := Similarity(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 100.0)
		}
	}
}

func TestSimilarity_InitialsAlignment(t *testing.T) {
	assert.Equal(t, 95.0, Similarity("Ivan Petrov", "Petrov I."))
	assert.Equal(t, 95.0, Similarity("I. Petrov", "Ivan Petrov"))
	assert.Less(t, Similarity("Ivan Petrov", "Ivan Smith"), 90.0)
	assert.Less(t, Similarity("I. Smith", "Ivan Petrov"), 90.0)
}

func TestSimilarity_CrossScript(t *testing.T) {
	s := Similarity("Иван Петров", "Ivan Petrov")
	assert.Equal(t, 95.0, s)
}

func TestSimilarity_TokenOrder(t *testing.T) {
	assert.Equal(t, 100.0, Similarity("Petrov Ivan", "Ivan Petrov"))
	assert.Equal(t, 100.0, Similarity("University Moscow State", "Moscow State University"))
	assert.Equal(t, 100.0, PartialRatio("ipetrov2019", "petrov"))
}

func TestRatio_MonotonicInEditDistance(t *testing.T) {
	base := "abcdefghij"
	prev := Ratio(base, base)
	for _, other := range []string{"abcdefghiX", "abcdefghXX", "abcdefgXXX", "XXXXXXXXXX"} {
		cur := Ratio(base, other)
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	cases := map[string]func(string) string{
		"name":         NormalizeName,
		"organization": NormalizeOrganization,
		"position":     NormalizePosition,
		"address":      NormalizeAddress,
		"key":          NormalizeKey,
	}
	inputs := []string{"  ivan   PETROV ", "мгу им. Ломоносова", "Assoc Prof of Physics", "Prof. Dr. Smith", "IVAN@Uni.RU ", "Пётр"}
	for name, fn := range cases {
		for _, in := range inputs {
			once := fn(in)
			assert.Equal(t, once, fn(once), "%s(%q)", name, in)
		}
	}
}

func TestNormalize_Canonicalization(t *testing.T) {
	assert.Equal(t, "Ivan Petrov", NormalizeName("  ivan   PETROV "))
	assert.Equal(t, "Petrov I.", NormalizeName("petrov I."))
	assert.Equal(t, "МГУ им. Ломоносова", NormalizeOrganization("мгу  им. Ломоносова"))
	assert.Equal(t, "associate professor of physics", NormalizePosition("Assoc Prof of Physics"))
	assert.Equal(t, "professor", NormalizePosition("Prof."))
	assert.Equal(t, "associate professor", NormalizePosition("assoc professor"))
	assert.Equal(t, "associate professor", NormalizePosition("Assoc. Prof."))
	assert.Equal(t, "assistant professor of physics", NormalizePosition("Asst Professor of Physics"))
	assert.Equal(t, "assoc member", NormalizePosition("Assoc Member"))
	assert.Equal(t, "professorship", NormalizePosition("professorship"))
	assert.Equal(t, "ivan@uni.ru", NormalizeAddress(" IVAN@Uni.RU "))
}

func TestTransliteration(t *testing.T) {
	assert.Equal(t, "ivan petrov", ToLatin("Иван Петров"))
	assert.Equal(t, "shchukin", ToLatin("Щукин"))
	assert.Equal(t, "sukin", ToLatinAlt("Щукин"))
	assert.Equal(t, "иван петров", ToCyrillic("Ivan Petrov"))
	assert.Equal(t, "щукин", ToCyrillic("shchukin"))
	assert.Equal(t, []string{"abc"}, LatinVariants("abc"))
}

func TestSplitLocalPart(t *testing.T) {
	assert.Equal(t, []string{"john", "doe"}, SplitLocalPart("john.doe"))
	assert.Equal(t, []string{"j", "smith"}, SplitLocalPart("j_smith42"))
	assert.Equal(t, []string{"john", "doe"}, SplitLocalPart("JohnDoe"))
	assert.Equal(t, []string{"leonid", "gorobets"}, SplitLocalPart("gorobetsleonid"))
	assert.Equal(t, []string{"xyzq"}, SplitLocalPart("xyzq"))
	assert.Nil(t, SplitLocalPart(""))
}

func TestAddressParts(t *testing.T) {
	assert.Equal(t, "ipetrov", LocalPart("IPetrov@Uni.ru"))
	assert.Equal(t, "uni.ru", Domain("IPetrov@Uni.ru"))
	assert.Equal(t, "", Domain("nodomain"))
}

func TestNameScore(t *testing.T) {
	assert.Equal(t, 1.0, NameScore("Ivan Petrov", "ivan petrov"))
	assert.Equal(t, 0.9, VariationScore("Ivan Petrov", "Petrov Ivan"))
	assert.Equal(t, 0.8, VariationScore("Александр Иванов", "Sasha Ivanov"))
	assert.InDelta(t, 0.9, TransliterationScore("Иван Петров", "Ivan Petrov"), 1e-9)
	assert.Equal(t, 0.0, NameScore("", "Ivan"))

	s := TokenNameScore("John A Smith", "John B Smith")
	assert.InDelta(t, 0.5, s, 1e-9)
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100.0, PartialRatio("petrov", "ipetrov2019"))
	assert.Equal(t, PartialRatio("abc", "xxabd"), PartialRatio("xxabd", "abc"))
	assert.Equal(t, 0.0, PartialRatio("", "abc"))
}
