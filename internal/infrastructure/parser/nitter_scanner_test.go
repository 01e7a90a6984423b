package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"QuotePress/internal/config"
	"QuotePress/internal/domain"
	"QuotePress/internal/scanner"
)

const timelineHTML = `
<div class="timeline">
  <div class="timeline-item">
    <a class="tweet-link" href="/someone/status/111#m"></a>
    <div class="tweet-content media-body">Read this one #BlogThis</div>
    <div class="quote">
      <div class="quote-text">Original claim about   batteries</div>
    </div>
  </div>
  <div class="timeline-item">
    <a class="tweet-link" href="/someone/status/222#m"></a>
    <div class="tweet-content media-body">No tag, just chatter</div>
    <div class="quote"><div class="quote-text">Something</div></div>
  </div>
  <div class="timeline-item">
    <a class="tweet-link" href="/someone/status/333#m"></a>
    <div class="tweet-content media-body">Tagged but no quote #blogthis</div>
  </div>
</div>`

func testQuery() scanner.Query {
	return scanner.Query{Username: "someone", Hashtag: "#BlogThis", RequireQuote: true}
}

func TestNitterScannerFallsThroughMirrors(t *testing.T) {
	t.Parallel()

	var seenUA atomic.Value
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUA.Store(r.Header.Get("User-Agent"))
		if r.URL.Path != "/someone" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(timelineHTML))
	}))
	defer healthy.Close()

	s := NewNitterScanner(config.NitterConfig{
		Instances: []string{broken.URL, healthy.URL + "/"},
		UserAgent: "Mozilla/5.0 test",
	}, healthy.Client(), nil)

	items, err := s.Attempt(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 qualifying item, got %d", len(items))
	}

	item := items[0]
	if item.ID != "111" {
		t.Fatalf("unexpected id: %s", item.ID)
	}
	if item.QuotedText != "Original claim about batteries" {
		t.Fatalf("unexpected quoted text: %q", item.QuotedText)
	}
	if item.URL != "https://x.com/someone/status/111" {
		t.Fatalf("unexpected url: %s", item.URL)
	}
	if item.Source != "nitter" {
		t.Fatalf("unexpected source: %s", item.Source)
	}
	if ua, _ := seenUA.Load().(string); ua != "Mozilla/5.0 test" {
		t.Fatalf("user agent not sent, got %q", ua)
	}
}

func TestNitterScannerAllMirrorsDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewNitterScanner(config.NitterConfig{Instances: []string{srv.URL}}, srv.Client(), nil)
	_, err := s.Attempt(context.Background(), testQuery())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestNitterScannerRespectsMaxItems(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(timelineHTML))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	q := testQuery()
	q.RequireQuote = false

	s := NewNitterScanner(config.NitterConfig{MaxItems: 2}, http.DefaultClient, nil)
	items := s.extractItems(doc, q)
	if len(items) != 1 || items[0].ID != "111" {
		t.Fatalf("expected only the first item inside the window, got %+v", items)
	}

	s = NewNitterScanner(config.NitterConfig{}, http.DefaultClient, nil)
	items = s.extractItems(doc, q)
	if len(items) != 2 {
		t.Fatalf("expected 2 tagged items without quote requirement, got %d", len(items))
	}
}

func TestStatusIDFromHref(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"/someone/status/123#m":   "123",
		"/someone/status/456":     "456",
		"/someone/status/789?s=1": "789",
		"":                        "",
	}
	for href, want := range cases {
		if got := statusIDFromHref(href); got != want {
			t.Fatalf("statusIDFromHref(%q) = %q, want %q", href, got, want)
		}
	}
}
