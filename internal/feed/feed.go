package feed

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/devboards/newswire/internal/article"
)

const fetchTimeout = 10 * time.Second

// Some publishers refuse feed requests from non-browser agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Normalizer fetches syndication documents and turns RSS items and Atom
// entries into canonical articles.
type Normalizer struct {
	parser *gofeed.Parser
}

// NewNormalizer creates a Normalizer with a fixed request timeout.
func NewNormalizer() *Normalizer {
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	p.Client = &http.Client{Timeout: fetchTimeout}
	return &Normalizer{parser: p}
}

// Fetch retrieves and normalizes one feed. Feed-level failures (network
// error, non-2xx response, unparseable document) yield an empty slice and
// a log line; they never abort the run.
func (n *Normalizer) Fetch(ctx context.Context, feedURL string) []article.Canonical {
	f, err := n.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		log.Printf("Error fetching feed %s: %v", feedURL, err)
		return nil
	}

	sourceName := strings.TrimSpace(f.Title)
	if sourceName == "" {
		sourceName = "Unknown Source"
	}

	now := time.Now()
	articles := make([]article.Canonical, 0, len(f.Items))
	for _, item := range f.Items {
		if item == nil {
			continue
		}
		articles = append(articles, normalizeItem(item, sourceName, now))
	}

	log.Printf("Found %d articles in %s", len(articles), feedURL)
	return articles
}

// normalizeItem maps one feed item to the canonical form. Both dialects
// arrive pre-flattened: the Atom link attribute and the RSS link element
// both land in item.Link, encoded-content and Atom content in item.Content.
func normalizeItem(item *gofeed.Item, sourceName string, now time.Time) article.Canonical {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = article.NoTitle
	}

	link := strings.TrimSpace(item.Link)
	if link == "" && len(item.Links) > 0 {
		link = strings.TrimSpace(item.Links[0])
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}

	guid := strings.TrimSpace(item.GUID)
	if guid == "" {
		guid = link
	}

	return article.Canonical{
		Title:       title,
		SourceURL:   link,
		SourceName:  sourceName,
		ContentRaw:  content,
		Author:      itemAuthor(item),
		PublishedAt: publishedAt(item, now),
		GUID:        guid,
		FetchedAt:   now,
	}
}

// publishedAt prefers pubDate/published over updated. gofeed's own parse
// covers the RFC 822 and ISO 8601 cases; when it gives up, the raw string
// goes through the total fallback chain.
func publishedAt(item *gofeed.Item, now time.Time) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}

	raw := item.Published
	if raw == "" {
		raw = item.Updated
	}
	return ParseDate(raw, now)
}

// itemAuthor prefers the Dublin Core creator over the dialect author
// element, defaulting to the Unknown sentinel.
func itemAuthor(item *gofeed.Item) string {
	if dc := item.DublinCoreExt; dc != nil && len(dc.Creator) > 0 {
		if creator := strings.TrimSpace(dc.Creator[0]); creator != "" {
			return creator
		}
	}
	if item.Author != nil {
		if name := strings.TrimSpace(item.Author.Name); name != "" {
			return name
		}
		if email := strings.TrimSpace(item.Author.Email); email != "" {
			return email
		}
	}
	return article.UnknownAuthor
}
