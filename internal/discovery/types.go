package discovery

import "time"

// Source is one configured origin: a direct feed URL or an HTML landing page
// expected to link to feeds for a given sector.
type Source struct {
	Sector string
	URL    string
	// Hinted marks sources whose sector assignment is authoritative:
	// entries from them skip keyword classification entirely.
	Hinted bool
}

// ResolvedFeed is a concrete feed URL traced back to the source it came from.
// A single landing-page source can fan out into several of these.
type ResolvedFeed struct {
	Source  Source
	FeedURL string
}

// Entry is one raw feed item, consumed immediately by the pipeline.
type Entry struct {
	Title     string
	URL       string
	Source    string
	Summary   string
	Published time.Time // zero when the feed carried no usable date
	Feed      ResolvedFeed
}
