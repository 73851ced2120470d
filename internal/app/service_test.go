package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mgillr/nextalent-regwatch/internal/config"
)

func testConfig(sources map[string][]string) config.Config {
	cfg := config.Default()
	cfg.Sources = sources
	cfg.TimeoutSeconds = 5
	return cfg
}

func newTestService(t *testing.T, cfg config.Config) *Service {
	t.Helper()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	s := New(cfg)
	s.fetcher.RetryDelay = 10 * time.Millisecond
	return s
}

func rssWithItems(feedTitle string, links ...string) string {
	pub := time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC1123Z)
	body := fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>%s</title>`, feedTitle)
	for i, link := range links {
		body += fmt.Sprintf(`<item><title>Notice %d</title><link>%s</link><description>update</description><pubDate>%s</pubDate></item>`, i, link, pub)
	}
	return body + `</channel></rss>`
}

func TestRunDeduplicatesAcrossOverlappingSources(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a/rss.xml", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(rssWithItems("EMA Press", "https://example.org/shared", "https://example.org/only-a")))
	})
	mux.HandleFunc("/b/rss.xml", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(rssWithItems("EMA Updates", "https://example.org/shared?utm_source=rss")))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg := testConfig(map[string][]string{
		"pharma": {ts.URL + "/a/rss.xml", ts.URL + "/b/rss.xml"},
	})
	snap := newTestService(t, cfg).Run(context.Background())

	items := snap.Sections["pharma"]
	if len(items) != 2 {
		t.Fatalf("pharma = %d items, want 2 (shared URL collapsed): %+v", len(items), items)
	}
	seen := map[string]bool{}
	for _, it := range items {
		if seen[it.URL] {
			t.Fatalf("duplicate URL in output: %s", it.URL)
		}
		seen[it.URL] = true
	}
}

func TestRunLandingPageWithoutFeedsIsHarmless(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/newsroom", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/about">About</a></body></html>`))
	})
	mux.HandleFunc("/pharma/rss.xml", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(rssWithItems("EMA Press", "https://example.org/p1")))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg := testConfig(map[string][]string{
		"space":  {ts.URL + "/newsroom"},
		"pharma": {ts.URL + "/pharma/rss.xml"},
	})
	snap := newTestService(t, cfg).Run(context.Background())

	if _, present := snap.Sections["space"]; present {
		t.Fatalf("linkless landing page should contribute nothing: %+v", snap.Sections["space"])
	}
	if len(snap.Sections["pharma"]) != 1 {
		t.Fatalf("other sectors must be unaffected: %+v", snap.Sections)
	}
}

func TestRunAllSourcesDown(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close() // every request now fails at the transport

	cfg := testConfig(map[string][]string{
		"pharma": {ts.URL + "/a/rss.xml"},
		"space":  {ts.URL + "/b/rss.xml"},
	})
	snap := newTestService(t, cfg).Run(context.Background())

	if len(snap.Sections) != 0 {
		t.Fatalf("sections should be empty, got %+v", snap.Sections)
	}
	if snap.Sections == nil {
		t.Fatalf("sections must be present even when empty")
	}
	if _, err := time.Parse(time.RFC3339, snap.LastUpdated); err != nil {
		t.Fatalf("lastUpdated not a valid timestamp: %v", err)
	}
}

func TestRunHintedSourcePreemptsKeywords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/aviation/rss.xml", func(w http.ResponseWriter, req *http.Request) {
		pub := time.Now().Add(-1 * time.Hour).UTC().Format(time.RFC1123Z)
		w.Write([]byte(fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>Authority News</title>
<item><title>Briefing</title><link>https://example.org/brief</link><description>space launch coverage included</description><pubDate>%s</pubDate></item>
</channel></rss>`, pub)))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg := testConfig(map[string][]string{
		"aviation": {ts.URL + "/aviation/rss.xml"},
	})
	cfg.Keywords = map[string][]string{"space": {"space launch"}}

	snap := newTestService(t, cfg).Run(context.Background())
	if len(snap.Sections["aviation"]) != 1 {
		t.Fatalf("hinted source must classify to its own sector: %+v", snap.Sections)
	}
	if _, present := snap.Sections["space"]; present {
		t.Fatalf("keyword must not override the source hint: %+v", snap.Sections)
	}
}

func TestRunStaleFallbackKeepsQuietSectorVisible(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/automotive/rss.xml", func(w http.ResponseWriter, req *http.Request) {
		pub := time.Now().Add(-30 * 24 * time.Hour).UTC().Format(time.RFC1123Z)
		w.Write([]byte(fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>Recalls</title>
<item><title>Old recall</title><link>https://example.org/recall</link><description>archived</description><pubDate>%s</pubDate></item>
</channel></rss>`, pub)))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg := testConfig(map[string][]string{
		"automotive": {ts.URL + "/automotive/rss.xml"},
	})

	snap := newTestService(t, cfg).Run(context.Background())
	items := snap.Sections["automotive"]
	if len(items) != 1 || items[0].Title != "Old recall" {
		t.Fatalf("stale fallback should surface the archived item: %+v", items)
	}

	// With the fallback disabled the sector disappears instead.
	cfg.StaleFallback = 0
	snap = newTestService(t, cfg).Run(context.Background())
	if _, present := snap.Sections["automotive"]; present {
		t.Fatalf("fallback disabled, sector should be absent: %+v", snap.Sections)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(map[string][]string{
		"pharma": {"https://unreachable.invalid/rss.xml"},
	})
	snap := newTestService(t, cfg).Run(ctx)
	if len(snap.Sections) != 0 {
		t.Fatalf("cancelled run should produce an empty snapshot, got %+v", snap.Sections)
	}
	if snap.LastUpdated == "" {
		t.Fatalf("cancelled run must still stamp lastUpdated")
	}
}
