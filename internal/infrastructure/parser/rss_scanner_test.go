package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"QuotePress/internal/config"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>someone / X</title>
  <link>https://nitter.example/someone</link>
  <item>
    <title>Read this #BlogThis</title>
    <link>https://nitter.example/someone/status/501#m</link>
    <description><![CDATA[<p>Read this #BlogThis</p><p><a href="https://nitter.example/other/status/900#m">nitter.example/other/status/900#m</a></p>]]></description>
  </item>
  <item>
    <title>Quoting with blockquote #blogthis</title>
    <link>https://nitter.example/someone/status/502#m</link>
    <description><![CDATA[<p>Quoting with blockquote #blogthis</p><blockquote>Solar output doubled</blockquote>]]></description>
  </item>
  <item>
    <title>Plain post #BlogThis</title>
    <link>https://nitter.example/someone/status/503#m</link>
    <description><![CDATA[<p>Plain post #BlogThis</p>]]></description>
  </item>
</channel>
</rss>`

func TestRSSScannerExtractsQuotePosts(t *testing.T) {
	t.Parallel()

	var requested atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested.Store(r.URL.Path)
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	s := NewRSSScanner(config.RSSConfig{Feeds: []string{srv.URL + "/{user}/rss"}}, srv.Client(), "", nil)
	items, err := s.Attempt(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if path, _ := requested.Load().(string); path != "/someone/rss" {
		t.Fatalf("placeholder not expanded, got %s", path)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 quote posts, got %d: %+v", len(items), items)
	}

	if items[0].ID != "501" || items[0].QuotedText != "https://nitter.example/other/status/900" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[0].Text != "Read this #BlogThis" {
		t.Fatalf("quote link should be stripped from text, got %q", items[0].Text)
	}
	if items[1].ID != "502" || items[1].QuotedText != "Solar output doubled" {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
	if items[1].Source != "rss" {
		t.Fatalf("unexpected source: %s", items[1].Source)
	}
}

func TestRSSScannerFallsBackToNextFeed(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/good", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedXML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewRSSScanner(config.RSSConfig{Feeds: []string{srv.URL + "/broken", srv.URL + "/good"}}, srv.Client(), "", nil)
	items, err := s.Attempt(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected items from second feed, got %d", len(items))
	}
}
