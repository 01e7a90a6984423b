package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"QuotePress/internal/config"
	"QuotePress/internal/domain"
	"QuotePress/internal/httputil"
	"QuotePress/internal/markup"
	"QuotePress/internal/ports"
)

const postsPath = "/wp-json/wp/v2/posts"

// Publisher creates posts through the WordPress REST API.
type Publisher struct {
	siteURL  string
	username string
	password string
	status   string
	policy   httputil.Policy
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher builds a publisher from configuration.
func NewPublisher(cfg config.WordPressConfig, log *slog.Logger) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	status := cfg.Status
	if status == "" {
		status = "publish"
	}
	return &Publisher{
		siteURL:  strings.TrimRight(cfg.SiteURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		status:   status,
		policy:   httputil.Policy{MaxAttempts: cfg.MaxAttempts, Delay: cfg.RetryDelay},
		client:   &http.Client{Timeout: timeout},
		logger:   log,
	}
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
	Excerpt string `json:"excerpt"`
}

type postResponse struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

// Publish posts the article and returns the public link reported by the site.
func (p *Publisher) Publish(ctx context.Context, article domain.ComposedArticle, item domain.CandidateItem) (domain.PublishResult, error) {
	payload, err := json.Marshal(postRequest{
		Title:   article.Title,
		Content: RenderContent(article),
		Status:  p.status,
		Excerpt: "Generated from X quote post: " + item.URL,
	})
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("%w: marshal post: %v", domain.ErrPublish, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.siteURL+postsPath, bytes.NewReader(payload))
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("%w: new request: %v", domain.ErrPublish, err)
	}
	req.SetBasicAuth(p.username, p.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, p.client, req, p.policy)
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("%w: %w", domain.ErrPublish, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return domain.PublishResult{}, fmt.Errorf("%w: wordpress returned %s: %s", domain.ErrPublish, resp.Status, strings.TrimSpace(string(body)))
	}

	var created postResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return domain.PublishResult{}, fmt.Errorf("%w: decode response: %v", domain.ErrPublish, err)
	}

	if p.logger != nil {
		p.logger.Info("post created", "post_id", created.ID, "link", created.Link)
	}
	return domain.PublishResult{Location: created.Link}, nil
}

// RenderContent converts the article body and references to post HTML.
func RenderContent(article domain.ComposedArticle) string {
	return markup.ToHTML(article.Body) + markup.ReferencesHTML(article.References)
}
