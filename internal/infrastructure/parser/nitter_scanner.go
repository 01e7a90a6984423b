package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"QuotePress/internal/config"
	"QuotePress/internal/domain"
	"QuotePress/internal/scanner"
)

// NitterScanner scrapes a profile timeline from public Nitter mirrors.
type NitterScanner struct {
	client    *http.Client
	instances []string
	maxItems  int
	userAgent string
	logger    *slog.Logger
}

var _ scanner.Strategy = (*NitterScanner)(nil)

// NewNitterScanner wires an HTTP client; maxItems defaults to 10.
func NewNitterScanner(cfg config.NitterConfig, client *http.Client, log *slog.Logger) *NitterScanner {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = 10
	}
	return &NitterScanner{
		client:    client,
		instances: cfg.Instances,
		maxItems:  maxItems,
		userAgent: cfg.UserAgent,
		logger:    log,
	}
}

// Name identifies the strategy inside the registry.
func (n *NitterScanner) Name() string {
	return "nitter"
}

// Attempt tries each mirror in turn and returns the first non-empty set of qualifying posts.
func (n *NitterScanner) Attempt(ctx context.Context, q scanner.Query) ([]domain.CandidateItem, error) {
	if len(n.instances) == 0 {
		return nil, fmt.Errorf("%w: no nitter instances configured", domain.ErrSourceUnavailable)
	}

	var lastErr error
	for _, instance := range n.instances {
		pageURL := strings.TrimRight(instance, "/") + "/" + q.Username

		doc, err := n.fetchDocument(ctx, pageURL)
		if err != nil {
			lastErr = err
			debug(n.logger, "mirror failed", "instance", instance, "error", err)
			continue
		}

		items := n.extractItems(doc, q)
		debug(n.logger, "mirror parsed", "instance", instance, "qualifying", len(items))
		if len(items) > 0 {
			return items, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: all nitter instances failed, last: %v", domain.ErrSourceUnavailable, lastErr)
	}
	return nil, nil
}

func (n *NitterScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request timeline: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (n *NitterScanner) extractItems(doc *goquery.Document, q scanner.Query) []domain.CandidateItem {
	var collected []domain.CandidateItem

	doc.Find("div.timeline-item").EachWithBreak(func(i int, entry *goquery.Selection) bool {
		if i >= n.maxItems {
			return false
		}

		item, ok := parseTimelineItem(entry, q.Username)
		if !ok {
			return true
		}
		if !scanner.Qualifies(item.Text, item.QuotedText, q) {
			return true
		}

		item.Source = n.Name()
		collected = append(collected, item)
		return true
	})

	return collected
}

func parseTimelineItem(entry *goquery.Selection, username string) (domain.CandidateItem, bool) {
	content := entry.Find(".tweet-content").First()
	if content.Length() == 0 {
		return domain.CandidateItem{}, false
	}
	text := scanner.CollapseSpace(content.Text())

	href, exists := entry.Find("a.tweet-link").First().Attr("href")
	if !exists {
		return domain.CandidateItem{}, false
	}
	id := statusIDFromHref(href)
	if id == "" {
		return domain.CandidateItem{}, false
	}

	var quoted string
	if quote := entry.Find("div.quote").First(); quote.Length() > 0 {
		if quoteText := quote.Find(".quote-text").First(); quoteText.Length() > 0 {
			quoted = scanner.CollapseSpace(quoteText.Text())
		} else {
			quoted = scanner.CollapseSpace(quote.Text())
		}
	}

	return domain.CandidateItem{
		ID:         id,
		Text:       text,
		QuotedText: quoted,
		URL:        scanner.StatusURL(username, id),
	}, true
}

// statusIDFromHref takes "/user/status/123#m" and returns "123".
func statusIDFromHref(href string) string {
	href = strings.TrimSuffix(href, "#m")
	if idx := strings.IndexAny(href, "?#"); idx >= 0 {
		href = href[:idx]
	}
	href = strings.TrimRight(href, "/")
	if idx := strings.LastIndex(href, "/"); idx >= 0 {
		href = href[idx+1:]
	}
	return strings.TrimSpace(href)
}

func debug(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}
