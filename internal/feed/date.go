package feed

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var dayExpr = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// RFC 822 style layouts as they actually appear in RSS pubDate elements.
var rfc822Layouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// ParseDate resolves a feed date string to a timestamp. The chain is total
// and never fails: RFC 822 layouts, then ISO 8601, then a permissive parse,
// then a bare YYYY-MM-DD anywhere in the string, then the supplied wall
// clock as last resort.
func ParseDate(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}

	for _, layout := range rfc822Layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}

	if t, err := dateparse.ParseAny(raw); err == nil {
		return t
	}

	if day := dayExpr.FindString(raw); day != "" {
		if t, err := time.Parse("2006-01-02", day); err == nil {
			return t
		}
	}

	log.Printf("Failed to parse date %q, falling back to current time", raw)
	return now
}
