// Package app wires discovery, classification and digest into one
// collection run.
package app

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mgillr/nextalent-regwatch/internal/classify"
	"github.com/mgillr/nextalent-regwatch/internal/config"
	"github.com/mgillr/nextalent-regwatch/internal/digest"
	"github.com/mgillr/nextalent-regwatch/internal/discovery"
)

type Service struct {
	cfg        config.Config
	resolver   *discovery.Resolver
	fetcher    *discovery.Fetcher
	classifier *classify.Classifier
	now        func() time.Time
}

func New(cfg config.Config) *Service {
	client := discovery.NewClient(cfg.Timeout())
	return &Service{
		cfg:        cfg,
		resolver:   discovery.NewResolver(client),
		fetcher:    discovery.NewFetcher(client),
		classifier: classify.New(cfg.Hints, cfg.Keywords, cfg.Sections),
		now:        time.Now,
	}
}

// Run executes one collection pass: fan out over the configured sources with
// a bounded worker pool, join, then classify and digest single-threaded.
// Per-source failures degrade to empty contributions; cancelling ctx stops
// in-flight fetches and builds the snapshot from whatever already arrived.
func (s *Service) Run(ctx context.Context) digest.Snapshot {
	sources := s.cfg.SourceList()

	// One result slot per source: workers never share mutable state, the
	// pieces are merged only after the join below.
	results := make([][]discovery.Entry, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			for _, feed := range s.resolver.Resolve(gctx, src) {
				results[i] = append(results[i], s.fetcher.Fetch(gctx, feed)...)
			}
			return nil
		})
	}
	_ = g.Wait() // join barrier; workers report no errors, only empty results

	var entries []discovery.Entry
	for _, r := range results {
		entries = append(entries, r...)
	}
	log.Printf("[app] %d entries from %d sources", len(entries), len(sources))

	now := s.now()
	fresh, stale := digest.Partition(entries, now, s.cfg.Window())

	sections := s.classifyAll(fresh)
	stalePool := s.classifyAll(stale)

	final := digest.Finalize(sections, stalePool, s.cfg.MaxPerSection, s.cfg.StaleFallback)
	return digest.BuildSnapshot(final, now)
}

// classifyAll groups entries by sector. Undecided entries are an expected,
// high-frequency outcome and are logged as skips, not failures.
func (s *Service) classifyAll(entries []discovery.Entry) map[string][]digest.Item {
	out := make(map[string][]digest.Item)
	for _, e := range entries {
		sector, ok := s.classifier.Classify(e)
		if !ok {
			log.Printf("[classify] skip, no sector: %q (%s)", e.Title, e.Source)
			continue
		}
		out[sector] = append(out[sector], digest.Item{
			Title:     e.Title,
			URL:       e.URL,
			Source:    e.Source,
			Summary:   e.Summary,
			Published: e.Published,
			Sector:    sector,
		})
	}
	return out
}
