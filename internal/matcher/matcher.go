// Package matcher decides which tracking rules a news item triggers.
package matcher

import (
	"strings"

	"newstracker/internal/domain"
)

// Matcher checks rule keywords against item text. Matching is plain
// case-insensitive substring containment: no stemming, no word
// boundaries. A rule triggers when any of its keywords is contained
// in the item's title+text haystack.
type Matcher struct {
	allMatches bool
}

// New builds a matcher. With allMatches false (the default policy)
// scanning stops at the first triggered rule per item; with true every
// triggered rule is returned, in rule-list order.
func New(allMatches bool) *Matcher {
	return &Matcher{allMatches: allMatches}
}

// Match returns the rules the item triggers, in rule order.
func (m *Matcher) Match(item domain.NewsItem, rules []domain.Rule) []domain.Rule {
	haystack := strings.ToLower(item.Title + " " + item.Text)

	var matched []domain.Rule
	for _, rule := range rules {
		if !triggers(haystack, rule) {
			continue
		}
		matched = append(matched, rule)
		if !m.allMatches {
			break
		}
	}

	return matched
}

func triggers(haystack string, rule domain.Rule) bool {
	for _, kw := range rule.Keywords {
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// NormalizeKeywords splits a raw comma-separated keyword string into
// trimmed lowercase keywords, dropping empties. An empty result means
// the rule must be excluded from the active set.
func NormalizeKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		kw := strings.ToLower(strings.TrimSpace(part))
		if kw == "" {
			continue
		}
		keywords = append(keywords, kw)
	}
	return keywords
}
