// Package digest turns classified entries into the final sectioned,
// timestamped snapshot: recency windowing, per-sector dedup and bounding,
// and snapshot assembly.
package digest

import (
	"sort"
	"strings"
	"time"
)

// Item is one classified entry. Sector is assigned exactly once, upstream.
type Item struct {
	Title     string
	URL       string
	Source    string
	Summary   string
	Published time.Time // zero means date-unknown
	Sector    string
}

// Key is the uniqueness key for deduplication: the normalized URL, or
// normalized title plus source for the rare entry without one.
func Key(it Item) string {
	if u := normalizeURL(it.URL); u != "" {
		return u
	}
	return strings.ToLower(strings.TrimSpace(it.Title)) + "|" + strings.ToLower(strings.TrimSpace(it.Source))
}

// normalizeURL drops query parameters and fragments so tracking-tagged
// duplicates of the same article collapse.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "?"); i > 0 {
		raw = raw[:i]
	}
	if i := strings.Index(raw, "#"); i > 0 {
		raw = raw[:i]
	}
	return strings.ToLower(raw)
}

// Finalize dedupes, orders and bounds each sector. When a sector has nothing
// recent but stale or undated entries exist for it, up to staleFallback of
// those are surfaced instead, so a quiet sector does not vanish from the
// output. The fallback is sector-local and idempotent.
func Finalize(sections, stalePool map[string][]Item, maxPerSection, staleFallback int) map[string][]Item {
	out := make(map[string][]Item, len(sections))
	for sector, items := range sections {
		if kept := bound(items, maxPerSection); len(kept) > 0 {
			out[sector] = kept
		}
	}

	if staleFallback > 0 {
		for sector, items := range stalePool {
			if len(out[sector]) > 0 {
				continue
			}
			if kept := bound(items, staleFallback); len(kept) > 0 {
				out[sector] = kept
			}
		}
	}
	return out
}

// bound removes duplicates (first-seen wins), sorts newest-first with
// date-unknown entries last, and truncates to max.
func bound(items []Item, max int) []Item {
	seen := make(map[string]struct{}, len(items))
	kept := make([]Item, 0, len(items))
	for _, it := range items {
		k := Key(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, it)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i].Published, kept[j].Published
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.After(b)
		}
	})

	if len(kept) > max {
		kept = kept[:max]
	}
	return kept
}
