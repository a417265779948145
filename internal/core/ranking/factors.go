package ranking

import (
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/agenthands/idresolve/internal/core/textsim"
)

// NeutralScore stands in for factors whose inputs are unknown.
const NeutralScore = 0.5

var (
	scientificPlatforms = []string{
		"orcid.org", "researchgate", "academia.edu", "publons", "ieee", "springer",
		"elsevier", "nature", "science", "pubmed", "ncbi", "arxiv", "researcherid", "scopus",
	}
	academicMarkers = []string{".edu", ".ac.", "university", "institute", "college", "research", "academic", "scholar"}
)

// PositionScore decays logarithmically with the search position: 0 → 1,
// 100 → 0.
func PositionScore(pos int) float64 {
	pos = max(0, pos)
	return max(0, 1-math.Log(float64(pos+1))/math.Log(101))
}

// URLQualityScore rewards registry links, HTTPS and URLs with few query
// parameters.
func URLQualityScore(raw string) float64 {
	if raw == "" {
		return 0
	}
	score := 0.0
	if strings.Contains(strings.ToLower(raw), "orcid.org") {
		score += 0.8
	}
	if strings.HasPrefix(raw, "https://") {
		score += 0.1
	}
	if strings.Count(raw, "?") <= 1 && strings.Count(raw, "&") <= 3 {
		score += 0.1
	}
	return min(1, score)
}

// Host returns the lower-cased host of a URL, or "" when it has none.
func Host(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// DomainQualityScore grades the host of a candidate URL.
func DomainQualityScore(raw string) float64 {
	if raw == "" {
		return 0
	}
	host := Host(raw)
	switch {
	case containsAny(host, scientificPlatforms):
		return 1
	case containsAny(host, academicMarkers):
		return 0.8
	case strings.Contains(host, ".org") || strings.Contains(host, ".gov"):
		return 0.6
	default:
		return 0.3
	}
}

// DomainAffinityScore compares the candidate URL host with the contact
// address domain.
func DomainAffinityScore(raw, contactAddress string) float64 {
	if raw == "" || contactAddress == "" {
		return 0
	}
	addrDomain := textsim.Domain(contactAddress)
	if addrDomain == "" {
		return 0
	}
	host := Host(raw)
	switch {
	case host == addrDomain:
		return 1
	case host != "" && (strings.HasSuffix(host, "."+addrDomain) || strings.HasSuffix(addrDomain, "."+host)):
		return 0.7
	case rootDomain(host) == rootDomain(addrDomain):
		return 0.5
	}
	return 0
}

// TemporalScore buckets the days since the last activity. Unknown activity
// is neutral.
func TemporalScore(last *time.Time, now time.Time) float64 {
	if last == nil {
		return NeutralScore
	}
	days := now.Sub(*last).Hours() / 24
	switch {
	case days <= 30:
		return 1
	case days <= 90:
		return 0.8
	case days <= 365:
		return 0.6
	case days <= 1095:
		return 0.4
	default:
		return 0.2
	}
}

// CitationScore blends the h-index (saturating at 50) and the publication
// count (saturating at 100). No data at all is neutral.
func CitationScore(hIndex *int, publications int) float64 {
	if hIndex == nil && publications <= 0 {
		return NeutralScore
	}
	h := 0
	if hIndex != nil {
		h = max(0, *hIndex)
	}
	return 0.7*min(1, float64(h)/50) + 0.3*min(1, float64(max(0, publications))/100)
}

// PotentialNames lists the names the owner of the target might go by: the
// supplied name, the contact-address local part and the name parts split
// from it.
func PotentialNames(targetName, contactAddress string) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(n string) {
		n = strings.TrimSpace(n)
		if n == "" || seen[strings.ToLower(n)] {
			return
		}
		seen[strings.ToLower(n)] = true
		names = append(names, n)
	}
	add(targetName)
	if contactAddress != "" {
		add(textsim.LocalPart(contactAddress))
		add(strings.Join(textsim.SplitLocalPart(contactAddress), " "))
	}
	return names
}

func rootDomain(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) > 2 {
		labels = labels[len(labels)-2:]
	}
	return strings.Join(labels, ".")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
