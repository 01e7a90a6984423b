package parser

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"QuotePress/internal/domain"
	"QuotePress/internal/scanner"
)

type stubStrategy struct {
	name  string
	items []domain.CandidateItem
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(context.Context, scanner.Query) ([]domain.CandidateItem, error) {
	s.calls++
	return s.items, s.err
}

func TestStrategySourceFirstNonEmptyWins(t *testing.T) {
	t.Parallel()

	failing := &stubStrategy{name: "xapi", err: errors.New("boom")}
	empty := &stubStrategy{name: "nitter"}
	hit := &stubStrategy{name: "rss", items: []domain.CandidateItem{{ID: "1"}}}
	unused := &stubStrategy{name: "manual", items: []domain.CandidateItem{{ID: "2"}}}

	reg := scanner.NewRegistry()
	for _, s := range []scanner.Strategy{failing, empty, hit, unused} {
		reg.Register(s)
	}

	src := NewStrategySource(reg, []string{"xapi", "nitter", "rss", "manual"}, testQuery(), nil)
	items, name, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if name != "rss" {
		t.Fatalf("expected rss to win, got %s", name)
	}
	if len(items) != 1 || items[0].Source != "rss" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if unused.calls != 0 {
		t.Fatalf("strategies after the winner must not run")
	}
}

func TestStrategySourceExhausted(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(&stubStrategy{name: "xapi", err: errors.New("boom")})
	reg.Register(&stubStrategy{name: "nitter"})

	src := NewStrategySource(reg, []string{"xapi", "nitter"}, testQuery(), nil)
	items, _, err := src.Fetch(context.Background())
	if !errors.Is(err, domain.ErrNoNewItems) {
		t.Fatalf("expected ErrNoNewItems, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestStrategySourceUnknownStrategy(t *testing.T) {
	t.Parallel()

	src := NewStrategySource(scanner.NewRegistry(), []string{"fax"}, testQuery(), nil)
	if _, _, err := src.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestManualScanner(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "manual.json")
	content := `[{"id":"10","text":"Handpicked","quoted_text":"Some claim"},{"id":"","text":"skipped"},{"id":"11","text":"Own url","url":"https://example.com/p/11"},{"id":"42"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manual file: %v", err)
	}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	items, err := NewManualScanner(path, logger).Attempt(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if !strings.Contains(logs.String(), "manual entry without id dropped") {
		t.Fatalf("dropped entry was not logged: %q", logs.String())
	}
	if items[0].Text != "Handpicked" {
		t.Fatalf("explicit text should be kept, got %q", items[0].Text)
	}
	wantText := testQuery().Hashtag + " manual entry 42"
	if items[2].Text != wantText {
		t.Fatalf("missing text should come from tag and id, got %q want %q", items[2].Text, wantText)
	}
	if items[2].URL != "https://x.com/someone/status/42" {
		t.Fatalf("unexpected derived url: %s", items[2].URL)
	}
	if items[0].URL != "https://x.com/someone/status/10" {
		t.Fatalf("unexpected derived url: %s", items[0].URL)
	}
	if items[1].URL != "https://example.com/p/11" {
		t.Fatalf("explicit url should be kept, got %s", items[1].URL)
	}

	missing, err := NewManualScanner(filepath.Join(dir, "absent.json"), nil).Attempt(context.Background(), testQuery())
	if err != nil || len(missing) != 0 {
		t.Fatalf("missing file should yield nothing, got %v %v", missing, err)
	}
}
