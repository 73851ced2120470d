package discovery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	// maxEntriesPerFeed keeps one noisy feed from crowding out the rest.
	maxEntriesPerFeed = 10
	maxSummaryRunes   = 300
	feedAccept        = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.1"
)

// Fetcher retrieves a resolved feed and extracts its entries. gofeed
// auto-detects RSS 2.0 vs Atom from the document root.
type Fetcher struct {
	Client     *Client
	RetryDelay time.Duration
}

func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{
		Client:     client,
		RetryDelay: 2 * time.Second,
	}
}

// Fetch returns the feed's entries, newest-declared first as published by
// the feed. Any failure is logged and yields an empty slice; a broken feed
// must never abort the run.
func (f *Fetcher) Fetch(ctx context.Context, rf ResolvedFeed) []Entry {
	body, err := f.getWithRetry(ctx, rf.FeedURL)
	if err != nil {
		log.Printf("[discovery] fetch %s: %v", rf.FeedURL, err)
		return nil
	}

	// One parser per call: Fetch runs concurrently across feeds.
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		log.Printf("[discovery] parse %s: %v", rf.FeedURL, err)
		return nil
	}

	items := feed.Items
	if len(items) > maxEntriesPerFeed {
		items = items[:maxEntriesPerFeed]
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		if u, err := url.Parse(rf.FeedURL); err == nil && u.Host != "" {
			source = u.Host
		} else {
			source = rf.FeedURL
		}
	}

	out := make([]Entry, 0, len(items))
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = "(no title)"
		}
		link := strings.TrimSpace(it.Link)
		if link == "" {
			link = rf.FeedURL
		}

		summary := it.Description
		if summary == "" {
			summary = it.Content
		}

		var published time.Time
		if it.PublishedParsed != nil {
			published = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			published = *it.UpdatedParsed
		}

		out = append(out, Entry{
			Title:     title,
			URL:       link,
			Source:    source,
			Summary:   cleanSummary(summary),
			Published: published,
			Feed:      rf,
		})
	}

	log.Printf("[discovery] %s: %d entries", rf.FeedURL, len(out))
	return out
}

// getWithRetry allows one retry on transport errors and 5xx responses.
// Client errors are final: a 404 today will be a 404 in two seconds too.
func (f *Fetcher) getWithRetry(ctx context.Context, feedURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.RetryDelay):
			}
		}

		resp, err := f.Client.get(ctx, feedURL, feedAccept)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if err != nil {
				lastErr = err
				continue
			}
			return body, nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("http %d", resp.StatusCode)
		default:
			return nil, fmt.Errorf("http %d", resp.StatusCode)
		}
	}
	return nil, lastErr
}

// cleanSummary strips HTML markup, collapses whitespace and bounds the
// length so downstream rendering gets plain, short text.
func cleanSummary(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
		s = doc.Text()
	}
	s = strings.Join(strings.Fields(s), " ")

	r := []rune(s)
	if len(r) > maxSummaryRunes {
		s = string(r[:maxSummaryRunes-3]) + "..."
	}
	return s
}
