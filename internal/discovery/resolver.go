package discovery

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Resolver turns configured source URLs into concrete feed URLs. URLs that
// already look like feeds pass through unchanged; everything else is treated
// as an HTML landing page and scanned for advertised feeds.
type Resolver struct {
	Client *Client
}

func NewResolver(client *Client) *Resolver {
	return &Resolver{Client: client}
}

// Resolve never fails: a dead or linkless landing page contributes zero
// feeds and the run moves on.
func (r *Resolver) Resolve(ctx context.Context, src Source) []ResolvedFeed {
	if LooksLikeFeed(src.URL) {
		return []ResolvedFeed{{Source: src, FeedURL: src.URL}}
	}

	found, err := r.discover(ctx, src.URL)
	if err != nil {
		log.Printf("[discovery] landing page %s: %v", src.URL, err)
		return nil
	}
	if len(found) == 0 {
		log.Printf("[discovery] no feeds on %s", src.URL)
		return nil
	}

	out := make([]ResolvedFeed, 0, len(found))
	for _, f := range found {
		out = append(out, ResolvedFeed{Source: src, FeedURL: f})
	}
	return out
}

// LooksLikeFeed reports whether a URL points at a feed document directly,
// judged by path alone.
func LooksLikeFeed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range []string{".xml", ".rss", ".atom"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return strings.Contains(path, "/rss") || strings.Contains(path, "/feed")
}

// discover fetches an HTML page and collects every feed URL it advertises:
// <link rel="alternate"> elements with feed media types plus anchors whose
// target or label looks feed-ish. Relative hrefs are resolved against the
// final request URL so redirected pages still produce absolute feed URLs.
func (r *Resolver) discover(ctx context.Context, pageURL string) ([]string, error) {
	resp, err := r.Client.get(ctx, pageURL, "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base := resp.Request.URL
	var found []string

	doc.Find("link").Each(func(_ int, s *goquery.Selection) {
		rel := strings.ToLower(s.AttrOr("rel", ""))
		if !strings.Contains(rel, "alternate") {
			return
		}
		typ := strings.ToLower(s.AttrOr("type", ""))
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		if strings.Contains(typ, "rss") || strings.Contains(typ, "atom") ||
			strings.HasSuffix(strings.ToLower(href), ".xml") {
			found = append(found, absolute(base, href))
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		label := strings.ToLower(strings.TrimSpace(s.Text()))
		if strings.Contains(label, "rss") || feedishHref(href) {
			found = append(found, absolute(base, href))
		}
	})

	// Dedupe preserving order, http(s) only.
	seen := make(map[string]struct{}, len(found))
	out := found[:0]
	for _, f := range found {
		if !strings.HasPrefix(f, "http://") && !strings.HasPrefix(f, "https://") {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

func feedishHref(href string) bool {
	h := strings.ToLower(href)
	for _, suffix := range []string{".rss", ".xml", "/rss", "/feed"} {
		if strings.HasSuffix(h, suffix) {
			return true
		}
	}
	return false
}

func absolute(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
