package ports

import (
	"context"
	"time"

	"QuotePress/internal/domain"
)

// ItemSource yields candidate posts from the first strategy that has any.
type ItemSource interface {
	Fetch(ctx context.Context) ([]domain.CandidateItem, string, error)
}

// Ledger is the durable record of items already carried through to publish.
type Ledger interface {
	Load(ctx context.Context) ([]domain.ProcessedRecord, error)
	Append(ctx context.Context, id string) error
}

// Researcher collects reference material for a topic. It never fails.
type Researcher interface {
	Research(ctx context.Context, topic string) []domain.SourceReference
}

// Generator turns an instruction prompt into free-form text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Composer produces an article for a candidate item.
type Composer interface {
	Compose(ctx context.Context, item domain.CandidateItem, sources []domain.SourceReference) (domain.ComposedArticle, error)
}

// Publisher writes a composed article to the blog.
type Publisher interface {
	Publish(ctx context.Context, article domain.ComposedArticle, item domain.CandidateItem) (domain.PublishResult, error)
}

// ContentStore is a versioned file store used by the static pages publisher.
// Get returns domain.ErrNotFound for absent paths. An empty version on Put creates the file.
type ContentStore interface {
	Get(ctx context.Context, path string) (content []byte, version string, err error)
	Put(ctx context.Context, path string, content []byte, version, message string) error
}

// Notifier announces published articles on a side channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
