package article

import (
	"regexp"
	"strings"
	"time"
)

// Sentinels used when a feed item carries no usable value.
const (
	NoTitle       = "No Title"
	UnknownAuthor = "Unknown"
)

// RequiredLanguages is the translation set every article must carry
// before it is accepted for storage.
var RequiredLanguages = []string{"en", "it", "es", "de", "fr"}

// Canonical is the normalized, source-agnostic form of one feed item.
// The source_url field is omitted from the stored document when empty so
// the sparse unique index exempts malformed entries.
type Canonical struct {
	Title       string    `bson:"title" json:"title"`
	SourceURL   string    `bson:"source_url,omitempty" json:"source_url"`
	SourceName  string    `bson:"source_name" json:"source_name"`
	ContentRaw  string    `bson:"content_raw" json:"content_raw"`
	Author      string    `bson:"author" json:"author"`
	PublishedAt time.Time `bson:"published_at" json:"published_at"`
	GUID        string    `bson:"guid" json:"guid"`
	FetchedAt   time.Time `bson:"fetched_at" json:"fetched_at"`
}

// Translation is one language rendering of an article. The en entry holds
// the full English rendering even when the source is already English.
type Translation struct {
	Language string `bson:"language" json:"language"`
	Title    string `bson:"title" json:"title"`
	Summary  string `bson:"summary" json:"summary"`
	Content  string `bson:"content" json:"content"`
}

// Enriched is a Canonical plus model-derived metadata and translations.
// It is immutable once the persistence gateway accepts it.
type Enriched struct {
	Canonical    `bson:",inline"`
	IsRelevant   bool          `bson:"is_relevant" json:"is_relevant"`
	Summary      string        `bson:"summary" json:"summary"`
	Category     string        `bson:"category" json:"category"`
	Tags         []string      `bson:"tags" json:"tags"`
	Language     string        `bson:"language" json:"language"`
	Sentiment    string        `bson:"sentiment" json:"sentiment"`
	Translations []Translation `bson:"translations" json:"translations"`
	Slug         string        `bson:"slug" json:"slug"`
	ViewsCount   int           `bson:"views_count" json:"views_count"`
	ClicksCount  int           `bson:"clicks_count" json:"clicks_count"`
	IsPublished  bool          `bson:"is_published" json:"is_published"`
}

var slugExpr = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a title: lowercased, with runs of
// non-alphanumeric characters collapsed to a single dash.
func Slugify(title string) string {
	slug := slugExpr.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// MissingLanguages reports which required language codes are absent from a
// translation set. An empty result means the set passes the storage gate.
func MissingLanguages(translations []Translation) []string {
	present := make(map[string]bool, len(translations))
	for _, t := range translations {
		present[t.Language] = true
	}

	var missing []string
	for _, lang := range RequiredLanguages {
		if !present[lang] {
			missing = append(missing, lang)
		}
	}
	return missing
}
