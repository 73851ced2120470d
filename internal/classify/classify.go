// Package classify assigns feed entries to sectors. Rules form an ordered
// chain; the first one that decides wins, so cheap high-precision signals
// (source and URL hints) pre-empt noisy keyword matching.
package classify

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/mgillr/nextalent-regwatch/internal/discovery"
)

// Rule inspects one entry and optionally decides its sector.
type Rule func(e discovery.Entry) (string, bool)

type Classifier struct {
	rules []Rule
}

// New builds the standard chain: source hint, URL hint, keywords.
// order fixes the sector priority for keyword ties.
func New(hints map[string]string, keywords map[string][]string, order []string) *Classifier {
	return &Classifier{rules: []Rule{
		sourceHintRule(),
		urlHintRule(hints),
		keywordRule(keywords, order),
	}}
}

// Classify returns the entry's sector. ok is false when no rule decides;
// such entries are dropped by the caller, there is no catch-all sector.
func (c *Classifier) Classify(e discovery.Entry) (sector string, ok bool) {
	for _, r := range c.rules {
		if sector, ok := r(e); ok {
			return sector, true
		}
	}
	return "", false
}

// sourceHintRule trusts the sector a hinted source was configured under.
// An aviation authority's feed is aviation news no matter what the entry says.
func sourceHintRule() Rule {
	return func(e discovery.Entry) (string, bool) {
		if e.Feed.Source.Hinted {
			return e.Feed.Source.Sector, true
		}
		return "", false
	}
}

// urlHintRule matches the entry's feed URL and hostname against a small
// host-fragment table. Keys are checked in sorted order so results do not
// depend on map iteration.
func urlHintRule(hints map[string]string) Rule {
	keys := make([]string, 0, len(hints))
	for k := range hints {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return func(e discovery.Entry) (string, bool) {
		feedURL := strings.ToLower(e.Feed.FeedURL)
		host := ""
		if u, err := url.Parse(e.Feed.FeedURL); err == nil {
			host = strings.ToLower(u.Host)
		}
		for _, k := range keys {
			if strings.Contains(host, k) || strings.Contains(feedURL, k) {
				return hints[k], true
			}
		}
		return "", false
	}
}

type sectorMatcher struct {
	sector string
	match  []func(text string) bool
}

// keywordRule tests the lowercased title+summary against each sector's
// keyword list, sectors in the fixed priority order. Short keywords (three
// characters or fewer, think "EMA" or "FAA") must sit on word boundaries so
// they cannot fire inside longer tokens; longer keywords match as substrings.
func keywordRule(keywords map[string][]string, order []string) Rule {
	matchers := make([]sectorMatcher, 0, len(order))
	for _, sector := range order {
		m := sectorMatcher{sector: sector}
		for _, kw := range keywords[sector] {
			kw := strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if len([]rune(kw)) <= 3 {
				re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
				m.match = append(m.match, re.MatchString)
			} else {
				m.match = append(m.match, func(text string) bool {
					return strings.Contains(text, kw)
				})
			}
		}
		matchers = append(matchers, m)
	}

	return func(e discovery.Entry) (string, bool) {
		text := strings.ToLower(e.Title + " " + e.Summary)
		for _, m := range matchers {
			for _, match := range m.match {
				if match(text) {
					return m.sector, true
				}
			}
		}
		return "", false
	}
}

// DefaultHints is the built-in regulator table, overridable from config.
func DefaultHints() map[string]string {
	return map[string]string{
		"nasa":               "space",
		"esa":                "space",
		"fcc":                "space",
		"easa":               "aviation",
		"faa":                "aviation",
		"ema":                "pharma",
		"fda":                "pharma",
		"nhtsa":              "automotive",
		"transportation.gov": "automotive",
		"nist":               "crossIndustry",
	}
}
