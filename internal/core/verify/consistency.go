package verify

import (
	"strings"

	"github.com/agenthands/idresolve/internal/core/model"
	"github.com/agenthands/idresolve/internal/core/textsim"
)

const (
	MethodPatternMatching = "pattern_matching"
	MethodFuzzyMatching   = "fuzzy_matching"

	ReasonMissingData       = "missing_data"
	ReasonInsufficientParts = "insufficient_name_parts"
	ReasonNoPatternMatch    = "no_pattern_match"
	ReasonRoleMatchesOrg    = "position_matches_org_type"
	ReasonUnknownOrgType    = "unknown_organization_type"
	ReasonRoleOrgMismatch   = "position_org_mismatch"

	patternThreshold = 70
	fuzzyThreshold   = 60
)

// CheckNameAddress tests whether the local part of a contact address is
// derived from the name (first.last, initial+last and so on, also in Latin
// transliteration). targetAddress takes precedence over the resolved address.
func CheckNameAddress(name, address, targetAddress string) model.ConsistencyCheck {
	check := targetAddress
	if check == "" {
		check = address
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(check) == "" {
		return model.ConsistencyCheck{Reason: ReasonMissingData}
	}
	parts := textsim.LetterTokens(name)
	if len(parts) < 2 {
		return model.ConsistencyCheck{Reason: ReasonInsufficientParts}
	}
	local := textsim.LocalPart(check)
	patterns := NamePatterns(parts)

	bestPattern, best := "", -1.0
	for _, p := range patterns {
		if s := textsim.Similarity(p, local); s > best {
			bestPattern, best = p, s
		}
	}
	if best >= patternThreshold {
		return model.ConsistencyCheck{IsConsistent: true, MatchedPattern: bestPattern, Similarity: best, Method: MethodPatternMatching}
	}

	bestPattern, best = "", -1.0
	for _, p := range patterns {
		if len([]rune(p)) < 3 {
			continue
		}
		if s := textsim.PartialRatio(p, local); s > best {
			bestPattern, best = p, s
		}
	}
	if best >= fuzzyThreshold {
		return model.ConsistencyCheck{IsConsistent: true, MatchedPattern: bestPattern, Similarity: best, Method: MethodFuzzyMatching}
	}
	return model.ConsistencyCheck{Reason: ReasonNoPatternMatch}
}

// NamePatterns lists the local-part spellings a person with these name parts
// commonly uses, for the parts as written and for both Latin transliterations.
// With three or more parts the first two are also combined, which covers the
// "Surname Given Patronymic" order.
func NamePatterns(parts []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, script := range [][]string{parts, mapParts(parts, textsim.ToLatin), mapParts(parts, textsim.ToLatinAlt)} {
		first, last := script[0], script[len(script)-1]
		fi := initial(first)
		mid := ""
		if len(script) > 2 {
			mid = initial(script[1])
		}
		add(first + "." + last)
		add(last + "." + first)
		add(first + last)
		add(last + first)
		add(fi + last)
		add(last + fi)
		add(last + fi + mid)
		if len(script) > 2 {
			second := script[1]
			add(first + "." + second)
			add(second + "." + first)
			add(first + second)
			add(second + first)
			add(initial(second) + first)
			add(first + initial(second))
		}
	}
	return out
}

func mapParts(parts []string, fn func(string) string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = fn(p)
	}
	return out
}

func initial(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// Keyword families shared by organizations and the roles they employ.
var (
	orgFamilies = []struct {
		family   string
		keywords []string
	}{
		{"academic", []string{"университет", "university", "институт", "institute"}},
		{"medical", []string{"больница", "hospital", "клиника", "clinic"}},
		{"corporate", []string{"компания", "company", "корпорация", "corporation"}},
	}
	roleFamilies = map[string][]string{
		"academic":  {"профессор", "professor", "доцент", "associate", "lecturer", "researcher"},
		"medical":   {"врач", "doctor", "медсестра", "nurse", "хирург", "surgeon"},
		"corporate": {"менеджер", "manager", "директор", "director", "specialist"},
	}
)

// OrganizationFamily classifies an organization name, "" when unknown.
func OrganizationFamily(org string) string {
	lower := strings.ToLower(org)
	for _, f := range orgFamilies {
		if containsAny(lower, f.keywords) {
			return f.family
		}
	}
	return ""
}

// CheckOrganizationRole is consistent when the role carries a keyword of the
// organization's family.
func CheckOrganizationRole(org, role string) model.ConsistencyCheck {
	if strings.TrimSpace(org) == "" || strings.TrimSpace(role) == "" {
		return model.ConsistencyCheck{Reason: ReasonMissingData}
	}
	family := OrganizationFamily(org)
	if family == "" {
		return model.ConsistencyCheck{Reason: ReasonUnknownOrgType}
	}
	if containsAny(strings.ToLower(role), roleFamilies[family]) {
		return model.ConsistencyCheck{IsConsistent: true, Family: family, Reason: ReasonRoleMatchesOrg}
	}
	return model.ConsistencyCheck{Family: family, Reason: ReasonRoleOrgMismatch}
}

// ApplyConsistency raises the confidence of a consistent name/address pair:
// name ×1.2, address ×1.1, capped at 1. Unresolved results are left alone.
// Components keep their clustering values; the factor goes to
// ConsistencyBoost.
func ApplyConsistency(name, address *model.VerificationResult, check model.ConsistencyCheck) {
	if !check.IsConsistent {
		return
	}
	boost(name, nameConsistencyBoost)
	boost(address, addressConsistencyBoost)
}

const (
	nameConsistencyBoost    = 1.2
	addressConsistencyBoost = 1.1
)

func boost(r *model.VerificationResult, factor float64) {
	if r == nil || r.Confidence <= 0 {
		return
	}
	r.Confidence = model.Clamp01(r.Confidence * factor)
	if r.ConsistencyBoost == 0 {
		r.ConsistencyBoost = 1
	}
	r.ConsistencyBoost *= factor
}
