package digest

import (
	"time"

	"github.com/mgillr/nextalent-regwatch/internal/discovery"
)

// skewTolerance is how far into the future a publish date may sit before we
// stop believing it. Regulator feeds do ship broken timestamps; those become
// date-unknown rather than errors.
const skewTolerance = time.Hour

// Partition splits entries into fresh (published within the lookback window
// of now) and stale (older, undated, or implausibly future). Stale entries
// are kept: they feed the empty-sector fallback instead of being lost.
func Partition(entries []discovery.Entry, now time.Time, window time.Duration) (fresh, stale []discovery.Entry) {
	cutoff := now.Add(-window)
	horizon := now.Add(skewTolerance)

	for _, e := range entries {
		switch {
		case e.Published.IsZero():
			stale = append(stale, e)
		case e.Published.After(horizon):
			// Future timestamp: demote to date-unknown.
			e.Published = time.Time{}
			stale = append(stale, e)
		case e.Published.Before(cutoff):
			stale = append(stale, e)
		default:
			fresh = append(fresh, e)
		}
	}
	return fresh, stale
}
