package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"QuotePress/internal/config"
	"QuotePress/internal/domain"
	"QuotePress/internal/ports"
)

const (
	maxQueryRunes   = 150
	maxSnippetRunes = 300
	maxTitleRunes   = 100
	maxRelated      = 4
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// DuckDuckGo queries the instant-answer API for background material.
type DuckDuckGo struct {
	client   *http.Client
	endpoint string
	hashtag  string
	logger   *slog.Logger
}

var _ ports.Researcher = (*DuckDuckGo)(nil)

// NewDuckDuckGo builds a researcher. The hashtag is stripped from every query.
func NewDuckDuckGo(cfg config.ResearchConfig, hashtag string, client *http.Client, log *slog.Logger) *DuckDuckGo {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &DuckDuckGo{
		client:   client,
		endpoint: cfg.Endpoint,
		hashtag:  hashtag,
		logger:   log,
	}
}

type instantAnswer struct {
	AbstractSource string         `json:"AbstractSource"`
	AbstractURL    string         `json:"AbstractURL"`
	AbstractText   string         `json:"AbstractText"`
	RelatedTopics  []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	FirstURL string `json:"FirstURL"`
	Text     string `json:"Text"`
}

// Research returns up to five references. Failures are logged and yield nothing.
func (d *DuckDuckGo) Research(ctx context.Context, topic string) []domain.SourceReference {
	query := CleanQuery(topic, d.hashtag)
	if query == "" {
		return nil
	}

	answer, err := d.lookup(ctx, query)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("research failed", "query", query, "error", err)
		}
		return nil
	}

	refs := answer.references()
	if d.logger != nil {
		d.logger.Debug("research done", "query", query, "references", len(refs))
	}
	return refs
}

func (d *DuckDuckGo) lookup(ctx context.Context, query string) (instantAnswer, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return instantAnswer{}, fmt.Errorf("%w: build request: %v", domain.ErrResearch, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return instantAnswer{}, fmt.Errorf("%w: %v", domain.ErrResearch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return instantAnswer{}, fmt.Errorf("%w: endpoint returned %s", domain.ErrResearch, resp.Status)
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return instantAnswer{}, fmt.Errorf("%w: decode: %v", domain.ErrResearch, err)
	}
	return answer, nil
}

func (a instantAnswer) references() []domain.SourceReference {
	var refs []domain.SourceReference

	if a.AbstractURL != "" {
		source := a.AbstractSource
		if source == "" {
			source = "Source"
		}
		refs = append(refs, domain.SourceReference{
			Title:   source,
			URL:     a.AbstractURL,
			Snippet: truncateRunes(a.AbstractText, maxSnippetRunes),
		})
	}

	for i, topic := range a.RelatedTopics {
		if i >= maxRelated {
			break
		}
		if topic.FirstURL == "" {
			continue
		}
		title, _, _ := strings.Cut(topic.Text, " - ")
		refs = append(refs, domain.SourceReference{
			Title:   truncateRunes(title, maxTitleRunes),
			URL:     topic.FirstURL,
			Snippet: truncateRunes(topic.Text, maxSnippetRunes),
		})
	}

	return refs
}

// CleanQuery strips the tag, links and mention markers and bounds the length.
func CleanQuery(topic, hashtag string) string {
	q := urlPattern.ReplaceAllString(topic, " ")
	if hashtag != "" {
		q = regexp.MustCompile(`(?i)`+regexp.QuoteMeta(hashtag)).ReplaceAllString(q, " ")
	}

	words := strings.Fields(q)
	for i, w := range words {
		words[i] = strings.TrimLeft(w, "#@")
	}
	q = strings.Join(strings.Fields(strings.Join(words, " ")), " ")

	return strings.TrimSpace(truncateRunes(q, maxQueryRunes))
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
