package textsim

import (
	"strings"
	"unicode"
)

// LocalPart returns the part of a contact address before '@', lower-cased.
func LocalPart(address string) string {
	address = strings.TrimSpace(address)
	if i := strings.LastIndex(address, "@"); i >= 0 {
		return strings.ToLower(address[:i])
	}
	return strings.ToLower(address)
}

// Domain returns the part of a contact address after '@', lower-cased.
func Domain(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 {
		return strings.ToLower(strings.TrimSpace(address[i+1:]))
	}
	return ""
}

var (
	commonGivenNames = []string{"leonid", "john", "mike", "alex", "vladimir", "dmitry", "sergey", "ivan", "anna", "maria"}
	commonSurnames   = []string{"smith", "johnson", "brown", "davis", "wilson", "gorobets", "petrov", "ivanov"}
)

// SplitLocalPart guesses name parts hidden in a local part: "john.doe" →
// [john doe], "JohnDoe" → [john doe], "gorobetsleonid" → [leonid gorobets].
// Digits are dropped. The whole local part is returned when nothing splits.
// Order is deterministic and duplicates are removed.
func SplitLocalPart(local string) []string {
	local = strings.TrimSpace(local)
	if i := strings.LastIndex(local, "@"); i >= 0 {
		local = local[:i]
	}
	if local == "" {
		return nil
	}
	var parts []string
	if strings.ContainsAny(local, "._-+") {
		for _, p := range strings.FieldsFunc(local, func(r rune) bool {
			return r == '.' || r == '_' || r == '-' || r == '+'
		}) {
			parts = append(parts, stripDigits(strings.ToLower(p)))
		}
		return dedupe(parts)
	}
	if camel := splitCamel(local); len(camel) > 1 {
		for _, p := range camel {
			parts = append(parts, stripDigits(strings.ToLower(p)))
		}
		return dedupe(parts)
	}
	lower := stripDigits(strings.ToLower(local))
	for _, known := range [][]string{commonGivenNames, commonSurnames} {
		for _, name := range known {
			if !strings.Contains(lower, name) {
				continue
			}
			parts = append(parts, name)
			if rest := strings.Replace(lower, name, "", 1); rest != "" {
				parts = append(parts, rest)
			}
		}
	}
	if len(parts) == 0 {
		parts = append(parts, lower)
	}
	return dedupe(parts)
}

func splitCamel(s string) []string {
	var out []string
	start := 0
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
			out = append(out, string(runes[start:i]))
			start = i
		}
	}
	out = append(out, string(runes[start:]))
	return out
}

func stripDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
