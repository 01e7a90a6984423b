package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"QuotePress/internal/config"
	"QuotePress/internal/domain"
	"QuotePress/internal/scanner"
)

var statusIDPattern = regexp.MustCompile(`/status(?:es)?/(\d+)`)

// RSSScanner reads profile feeds exposed by RSS proxies.
type RSSScanner struct {
	parser   *gofeed.Parser
	feeds    []string
	maxItems int
	logger   *slog.Logger
}

var _ scanner.Strategy = (*RSSScanner)(nil)

// NewRSSScanner builds a feed strategy; feed URLs may contain a {user} placeholder.
func NewRSSScanner(cfg config.RSSConfig, client *http.Client, userAgent string, log *slog.Logger) *RSSScanner {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	fp := gofeed.NewParser()
	fp.Client = client
	if userAgent != "" {
		fp.UserAgent = userAgent
	}
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = 20
	}
	return &RSSScanner{
		parser:   fp,
		feeds:    cfg.Feeds,
		maxItems: maxItems,
		logger:   log,
	}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return "rss"
}

// Attempt reads feeds in order and returns the first non-empty qualifying set.
func (r *RSSScanner) Attempt(ctx context.Context, q scanner.Query) ([]domain.CandidateItem, error) {
	if len(r.feeds) == 0 {
		return nil, fmt.Errorf("%w: no feeds configured", domain.ErrSourceUnavailable)
	}

	var lastErr error
	for _, tmpl := range r.feeds {
		feedURL := strings.ReplaceAll(tmpl, "{user}", q.Username)

		feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			lastErr = err
			debug(r.logger, "feed failed", "feed", feedURL, "error", err)
			continue
		}

		items := r.extractItems(feed, q)
		debug(r.logger, "feed parsed", "feed", feedURL, "entries", len(feed.Items), "qualifying", len(items))
		if len(items) > 0 {
			return items, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: all feeds failed, last: %v", domain.ErrSourceUnavailable, lastErr)
	}
	return nil, nil
}

func (r *RSSScanner) extractItems(feed *gofeed.Feed, q scanner.Query) []domain.CandidateItem {
	var collected []domain.CandidateItem
	for i, entry := range feed.Items {
		if i >= r.maxItems {
			break
		}
		if entry == nil {
			continue
		}

		id := statusIDFrom(entry.Link)
		if id == "" {
			id = statusIDFrom(entry.GUID)
		}
		if id == "" {
			continue
		}

		text, quoted := splitDescription(entry.Description, id)
		if text == "" {
			text = scanner.CollapseSpace(entry.Title)
		}
		if !scanner.Qualifies(text, quoted, q) {
			continue
		}

		collected = append(collected, domain.CandidateItem{
			ID:         id,
			Text:       text,
			QuotedText: quoted,
			URL:        scanner.StatusURL(q.Username, id),
			Source:     r.Name(),
		})
	}
	return collected
}

func statusIDFrom(link string) string {
	m := statusIDPattern.FindStringSubmatch(link)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// splitDescription separates the post body from the quoted post. Proxies render the
// quote either as a blockquote or as a trailing link to another status.
func splitDescription(description, ownID string) (string, string) {
	if strings.TrimSpace(description) == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return scanner.CollapseSpace(description), ""
	}

	var quoted string
	if block := doc.Find("blockquote").First(); block.Length() > 0 {
		quoted = scanner.CollapseSpace(block.Text())
		block.Remove()
	}

	if quoted == "" {
		doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
			href, _ := link.Attr("href")
			id := statusIDFrom(href)
			if id != "" && id != ownID {
				quoted = strings.TrimSuffix(href, "#m")
				link.Remove()
				return false
			}
			return true
		})
	}

	return scanner.CollapseSpace(doc.Text()), quoted
}
