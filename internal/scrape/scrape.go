package scrape

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

const pageTimeout = 15 * time.Second

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Substrings that flag a class or id attribute as the main content region.
var contentHints = []string{"content", "post", "article"}

// Recoverer fetches an article page and extracts its main body text. It is
// used when the feed body is too short or truncated.
type Recoverer struct {
	client *http.Client
}

// NewRecoverer creates a Recoverer; a nil client gets the default with the
// page fetch timeout.
func NewRecoverer(client *http.Client) *Recoverer {
	if client == nil {
		client = &http.Client{Timeout: pageTimeout}
	}
	return &Recoverer{client: client}
}

// Recover fetches the page and extracts its main text. Any fetch or parse
// failure yields ""; callers must treat that as "no improvement", never as
// an error to propagate.
func (r *Recoverer) Recover(ctx context.Context, pageURL string) string {
	log.Printf("Fetching full content from: %s", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		log.Printf("Error building request for %s: %v", pageURL, err)
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		log.Printf("Error fetching full content from %s: %v", pageURL, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Error fetching full content from %s: %s", pageURL, resp.Status)
		return ""
	}

	page, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading page %s: %v", pageURL, err)
		return ""
	}

	return ExtractMainText(page, pageURL)
}

// ExtractMainText strips non-content elements and selects the main region
// using, in order: an explicit article element, an element whose class or
// id hints at content, a readability extraction, and finally the whole
// body. The selected region is rendered as block-separated plain text.
func ExtractMainText(page []byte, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		log.Printf("Error parsing page %s: %v", pageURL, err)
		return ""
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	if sel := doc.Find("article").First(); sel.Length() > 0 {
		return blockText(sel)
	}

	if sel := findByHint(doc); sel != nil {
		return blockText(sel)
	}

	if text := readabilityText(page, pageURL); text != "" {
		return text
	}

	return blockText(doc.Find("body").First())
}

// findByHint returns the first element whose class or id attribute
// contains one of the content hints.
func findByHint(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("body *").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")
		attrs := strings.ToLower(class + " " + id)
		for _, hint := range contentHints {
			if strings.Contains(attrs, hint) {
				found = sel
				return false
			}
		}
		return true
	})
	return found
}

func readabilityText(page []byte, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	art, err := readability.FromReader(bytes.NewReader(page), u)
	if err != nil {
		return ""
	}
	return collapseLines(art.TextContent)
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"li": true, "ul": true, "ol": true, "br": true, "blockquote": true,
	"pre": true, "table": true, "tr": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true,
}

// blockText renders a selection as plain text with newlines between block
// elements and blank lines collapsed.
func blockText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	var sb strings.Builder
	for _, n := range sel.Nodes {
		writeText(&sb, n)
	}
	return collapseLines(sb.String())
}

func writeText(sb *strings.Builder, n *html.Node) {
	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		sb.WriteByte('\n')
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if block {
		sb.WriteByte('\n')
	}
}

func collapseLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
