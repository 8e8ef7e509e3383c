package render

import (
	"strings"

	domain "github.com/aydinholding/report-service/internal/domain/projects"
)

// Keyword fallback is intentionally narrow: only the finance and
// construction domains have one. Other components match on filename only.
var fallbackKeywords = map[string][]string{
	"finans": {"finans", "fatura", "butce", "maliyet", "odeme", "tahsilat", "nakit"},
	"insaat": {"insaat", "santiye", "saha", "beton", "kaba", "ince", "temel"},
}

// MatchComponent assigns an image filename to a component. Policy, first
// match wins: normalized "<component>-" prefix, normalized substring, then
// the keyword fallback. Unmatched images are omitted, never an error.
func MatchComponent(filename string, components []string) (string, bool) {
	name := domain.Normalize(filename)

	for _, c := range components {
		if strings.HasPrefix(name, domain.Normalize(c)+"-") {
			return c, true
		}
	}
	for _, c := range components {
		if strings.Contains(name, domain.Normalize(c)) {
			return c, true
		}
	}
	for _, c := range components {
		words, ok := fallbackKeywords[domain.Normalize(c)]
		if !ok {
			continue
		}
		for _, w := range words {
			if strings.Contains(name, w) {
				return c, true
			}
		}
	}
	return "", false
}
