package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractMainTextPrefersArticleElement(t *testing.T) {
	page := `<html><body>
		<div class="sidebar-content">Sidebar junk</div>
		<article><h1>Headline</h1><p>First paragraph.</p><p>Second paragraph.</p></article>
	</body></html>`

	got := ExtractMainText([]byte(page), "https://example.com/a")
	if !strings.Contains(got, "First paragraph.") || !strings.Contains(got, "Second paragraph.") {
		t.Errorf("article text missing: %q", got)
	}
	if strings.Contains(got, "Sidebar junk") {
		t.Errorf("article selection leaked sidebar text: %q", got)
	}
	// block elements become separate lines
	if !strings.Contains(got, "First paragraph.\nSecond paragraph.") {
		t.Errorf("expected block-separated text, got %q", got)
	}
}

func TestExtractMainTextClassHint(t *testing.T) {
	page := `<html><body>
		<div class="wrapper"><div class="post-body"><p>Hinted body text.</p></div></div>
	</body></html>`

	got := ExtractMainText([]byte(page), "https://example.com/b")
	if !strings.Contains(got, "Hinted body text.") {
		t.Errorf("class hint selection failed: %q", got)
	}
}

func TestExtractMainTextIDHint(t *testing.T) {
	page := `<html><body><div id="main-content"><p>By id.</p></div></body></html>`

	got := ExtractMainText([]byte(page), "https://example.com/c")
	if !strings.Contains(got, "By id.") {
		t.Errorf("id hint selection failed: %q", got)
	}
}

func TestExtractMainTextStripsNoise(t *testing.T) {
	page := `<html><body>
		<nav>Navigation</nav>
		<article><p>Real text.</p><script>var x = "script noise";</script></article>
		<footer>Footer text</footer>
	</body></html>`

	got := ExtractMainText([]byte(page), "https://example.com/d")
	for _, noise := range []string{"Navigation", "script noise", "Footer text"} {
		if strings.Contains(got, noise) {
			t.Errorf("noise %q survived extraction: %q", noise, got)
		}
	}
	if !strings.Contains(got, "Real text.") {
		t.Errorf("content lost during noise stripping: %q", got)
	}
}

func TestExtractMainTextBodyFallback(t *testing.T) {
	page := `<html><body><p>Plain body only.</p></body></html>`

	got := ExtractMainText([]byte(page), "https://example.com/e")
	if !strings.Contains(got, "Plain body only.") {
		t.Errorf("body fallback failed: %q", got)
	}
}

func TestExtractMainTextUnparseable(t *testing.T) {
	// the HTML parser is extremely permissive so even garbage yields a
	// document; the function must still not panic and return something sane
	got := ExtractMainText([]byte{0x00, 0x01}, "https://example.com/f")
	if strings.TrimSpace(got) != got {
		t.Errorf("expected trimmed output, got %q", got)
	}
}

func TestRecoverSoftFailsOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	if got := NewRecoverer(nil).Recover(context.Background(), srv.URL); got != "" {
		t.Errorf("expected empty result on HTTP error, got %q", got)
	}
}

func TestRecoverSoftFailsOnConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	if got := NewRecoverer(nil).Recover(context.Background(), srv.URL); got != "" {
		t.Errorf("expected empty result on connection error, got %q", got)
	}
}

func TestRecoverExtractsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><article><p>Recovered full story.</p></article></body></html>`))
	}))
	defer srv.Close()

	got := NewRecoverer(nil).Recover(context.Background(), srv.URL)
	if !strings.Contains(got, "Recovered full story.") {
		t.Errorf("recovery failed: %q", got)
	}
}
