package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"QuotePress/internal/config"
	"QuotePress/internal/domain"
	"QuotePress/internal/ports"
)

const dateLayout = "2006-01-02"

// Publisher writes articles as static pages into a content store and keeps the index current.
type Publisher struct {
	store     ports.ContentStore
	siteURL   string
	siteTitle string
	dir       string
	indexPath string
	now       func() time.Time
	logger    *slog.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher wires the store with site layout settings.
func NewPublisher(store ports.ContentStore, cfg config.PagesConfig, log *slog.Logger) *Publisher {
	indexPath := cfg.IndexPath
	if indexPath == "" {
		indexPath = "index.html"
	}
	siteTitle := cfg.SiteTitle
	if siteTitle == "" {
		siteTitle = "Articles"
	}
	return &Publisher{
		store:     store,
		siteURL:   strings.TrimRight(cfg.SiteURL, "/"),
		siteTitle: siteTitle,
		dir:       strings.Trim(cfg.Dir, "/"),
		indexPath: strings.TrimLeft(indexPath, "/"),
		now:       time.Now,
		logger:    log,
	}
}

// Publish writes the page, then adds it to the top of the index.
func (p *Publisher) Publish(ctx context.Context, article domain.ComposedArticle, item domain.CandidateItem) (domain.PublishResult, error) {
	date := p.now().UTC().Format(dateLayout)
	pagePath := path.Join(p.dir, Slug(article.Title, item.ID)+".html")

	page, err := RenderArticle(p.siteTitle, p.homeLink(pagePath), date, article, item)
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("%w: %v", domain.ErrPublish, err)
	}
	if err := p.upsert(ctx, pagePath, page, "Publish: "+article.Title); err != nil {
		return domain.PublishResult{}, fmt.Errorf("%w: write page: %w", domain.ErrPublish, err)
	}

	if err := p.updateIndex(ctx, IndexEntry{
		Date:      date,
		Title:     article.Title,
		Link:      pagePath,
		SourceURL: item.URL,
	}); err != nil {
		return domain.PublishResult{}, fmt.Errorf("%w: update index: %w", domain.ErrPublish, err)
	}

	location := pagePath
	if p.siteURL != "" {
		location = p.siteURL + "/" + pagePath
	}
	if p.logger != nil {
		p.logger.Info("page published", "path", pagePath, "location", location)
	}
	return domain.PublishResult{Location: location}, nil
}

func (p *Publisher) updateIndex(ctx context.Context, entry IndexEntry) error {
	current, version, err := p.store.Get(ctx, p.indexPath)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	var entries []IndexEntry
	if len(current) > 0 {
		if entries, err = ParseIndex(current); err != nil {
			return err
		}
	}

	rendered, err := RenderIndex(p.siteTitle, Prepend(entries, entry))
	if err != nil {
		return err
	}
	return p.store.Put(ctx, p.indexPath, rendered, version, "Update index: "+entry.Title)
}

// upsert reads the current version so an existing file is overwritten rather than rejected.
func (p *Publisher) upsert(ctx context.Context, name string, content []byte, message string) error {
	_, version, err := p.store.Get(ctx, name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return p.store.Put(ctx, name, content, version, message)
}

// homeLink is the relative path from pagePath back to the index.
func (p *Publisher) homeLink(pagePath string) string {
	depth := strings.Count(pagePath, "/")
	return strings.Repeat("../", depth) + p.indexPath
}
