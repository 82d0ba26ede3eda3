package pipeline

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/devboards/newswire/internal/article"
	"github.com/devboards/newswire/internal/enrich"
)

const (
	// Feed bodies shorter than this are treated as snippets and trigger
	// full-content recovery.
	minContentChars = 2000

	// Phrase some feeds append when they truncate the body.
	truncationMarker = "Read the full story"
)

// FeedSource yields canonical articles for one feed URL. Implemented by
// feed.Normalizer.
type FeedSource interface {
	Fetch(ctx context.Context, feedURL string) []article.Canonical
}

// Recoverer extracts the main text of an article page; "" means no
// improvement. Implemented by scrape.Recoverer.
type Recoverer interface {
	Recover(ctx context.Context, pageURL string) string
}

// Enricher produces structured metadata and translations for one article.
// Implemented by enrich.Client.
type Enricher interface {
	Enrich(ctx context.Context, title, content string) (*enrich.Result, error)
}

// Store is the persistence gateway. Implemented by store.Gateway.
type Store interface {
	IsDuplicate(ctx context.Context, sourceURL string) (bool, error)
	Save(ctx context.Context, a *article.Enriched) (bool, error)
}

// Publisher announces stored articles; optional. Implemented by
// event.Publisher.
type Publisher interface {
	PublishStored(ctx context.Context, a *article.Enriched) error
}

// Options are the parameters of one ingestion run.
type Options struct {
	Sources   []string // feed URLs, processed in order
	Limit     int      // max items inspected per source, 0 = unlimited
	Target    int      // stop after this many newly stored articles, 0 = no quota
	TodayOnly bool     // only process articles published today (local time)
	DryRun    bool     // run every gate but skip the final write
}

// Stats is the owned state of one run; nothing about a run lives in
// package-level variables.
type Stats struct {
	TotalAdded int // newly stored articles (or would-be stores in dry runs)
	Inspected  int // items that entered the per-item pipeline
	Duplicates int // dedup-check hits plus save-time duplicate keys
	Rejected   int // translation-incomplete or irrelevant articles
	Skipped    int // items outside the date window
}

// Pipeline drives one ingestion run over its collaborators.
type Pipeline struct {
	feeds     FeedSource
	recoverer Recoverer
	enricher  Enricher
	store     Store
	publisher Publisher
}

// New wires a pipeline. recoverer and publisher may be nil; feeds,
// enricher, and store are required.
func New(feeds FeedSource, recoverer Recoverer, enricher Enricher, store Store, publisher Publisher) *Pipeline {
	return &Pipeline{
		feeds:     feeds,
		recoverer: recoverer,
		enricher:  enricher,
		store:     store,
		publisher: publisher,
	}
}

// Run executes one ingestion run: every configured source in order, every
// item through dedup, recovery, enrichment, validation, and persistence,
// stopping early once the target count of newly stored articles is
// reached. Dry runs make identical accept/reject decisions and differ only
// in the final write.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Stats, error) {
	if len(opts.Sources) == 0 {
		return nil, errors.New("no feed sources configured")
	}
	if p.feeds == nil || p.enricher == nil || p.store == nil {
		return nil, errors.New("pipeline missing a required collaborator")
	}

	if opts.DryRun {
		log.Println("Running in dry-run mode; no data will be saved")
	}

	// Local midnight anchors the date window; timestamps are reduced to
	// local time before comparison.
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	stats := &Stats{}
	for _, source := range opts.Sources {
		if opts.Target > 0 && stats.TotalAdded >= opts.Target {
			break
		}

		log.Printf("Processing source: %s", source)
		items := p.feeds.Fetch(ctx, source)

		inspected := 0
		for i := range items {
			if opts.Target > 0 && stats.TotalAdded >= opts.Target {
				log.Printf("Target of %d articles reached", opts.Target)
				break
			}
			if opts.Limit > 0 && inspected >= opts.Limit {
				break
			}
			inspected++
			p.processItem(ctx, items[i], opts, todayStart, stats)
		}
	}

	log.Printf("Run completed. Added %d new articles.", stats.TotalAdded)
	return stats, nil
}

// processItem runs one canonical article through the gates in order:
// date window, dedup, content recovery, enrichment (with deterministic
// fallback), translation validation, relevance, and persistence.
func (p *Pipeline) processItem(ctx context.Context, art article.Canonical, opts Options, todayStart time.Time, stats *Stats) {
	published := art.PublishedAt.In(time.Local)
	if opts.TodayOnly && published.Before(todayStart) {
		log.Printf("Skipping article from %s (not today): %s", published.Format("2006-01-02"), art.Title)
		stats.Skipped++
		return
	}

	stats.Inspected++

	// Dedup before enrichment so known articles never cost model tokens.
	if art.SourceURL != "" {
		dup, err := p.store.IsDuplicate(ctx, art.SourceURL)
		if err != nil {
			log.Printf("Duplicate check failed for %s (%s): %v", art.Title, art.SourceURL, err)
			return
		}
		if dup {
			log.Printf("Skipping duplicate: %s", art.Title)
			stats.Duplicates++
			return
		}
	}

	log.Printf("Processing: %s (published %s)", art.Title, published.Format(time.RFC3339))

	if p.recoverer != nil && art.SourceURL != "" && needsRecovery(art.ContentRaw) {
		full := p.recoverer.Recover(ctx, art.SourceURL)
		// Replacement only when strictly longer; a failed fetch must never
		// shrink the content we already have.
		if len(full) > len(art.ContentRaw) {
			log.Printf("Recovered full content for %s (%d chars)", art.Title, len(full))
			art.ContentRaw = full
		} else {
			log.Printf("Content recovery returned nothing longer for %s", art.Title)
		}
	}

	result, err := p.enricher.Enrich(ctx, art.Title, art.ContentRaw)
	if err != nil || result == nil {
		log.Printf("Enrichment failed for %s (%s): %v; using fallback", art.Title, art.SourceURL, err)
		result = enrich.Fallback(art)
	}

	if missing := article.MissingLanguages(result.Translations); len(missing) > 0 {
		log.Printf("Missing required translations %v for %s (%s); skipping", missing, art.Title, art.SourceURL)
		stats.Rejected++
		return
	}

	if !result.IsRelevant {
		log.Printf("Skipping irrelevant article: %s", art.Title)
		stats.Rejected++
		return
	}

	enriched := &article.Enriched{
		Canonical:    art,
		IsRelevant:   result.IsRelevant,
		Summary:      result.Summary,
		Category:     result.Category,
		Tags:         result.Tags,
		Language:     result.Language,
		Sentiment:    result.Sentiment,
		Translations: result.Translations,
		Slug:         article.Slugify(art.Title),
		IsPublished:  true,
	}

	if opts.DryRun {
		log.Printf("[dry run] Would save: %s - %s", enriched.Title, enriched.Category)
		stats.TotalAdded++
		return
	}

	saved, err := p.store.Save(ctx, enriched)
	if err != nil {
		log.Printf("Error saving %s (%s): %v", enriched.Title, enriched.SourceURL, err)
		return
	}
	if !saved {
		stats.Duplicates++
		return
	}
	stats.TotalAdded++

	if p.publisher != nil {
		if err := p.publisher.PublishStored(ctx, enriched); err != nil {
			log.Printf("Event publish failed for %s: %v", enriched.Slug, err)
		}
	}
}

// needsRecovery reports whether a feed body is weak enough to attempt a
// full-content fetch.
func needsRecovery(content string) bool {
	return len(content) < minContentChars || strings.Contains(content, truncationMarker)
}
