package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"QuotePress/internal/domain"
	"QuotePress/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ItemSource
	Ledger     ports.Ledger
	Researcher ports.Researcher
	Composer   ports.Composer
	Publisher  ports.Publisher
	Notifier   ports.Notifier
	Logger     *slog.Logger

	MaxPerRun     int
	ResearchDelay time.Duration
	ItemDelay     time.Duration

	// Wait pauses between steps; nil uses a context-aware timer.
	Wait func(ctx context.Context, d time.Duration) error
	// NewRunID labels a run in the logs; nil uses random UUIDs.
	NewRunID func() string
}

// Pipeline implements the quote-to-article workflow.
type Pipeline struct {
	source     ports.ItemSource
	ledger     ports.Ledger
	researcher ports.Researcher
	composer   ports.Composer
	publisher  ports.Publisher
	notifier   ports.Notifier
	logger     *slog.Logger

	maxPerRun     int
	researchDelay time.Duration
	itemDelay     time.Duration
	wait          func(ctx context.Context, d time.Duration) error
	newRunID      func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:        deps.Source,
		ledger:        deps.Ledger,
		researcher:    deps.Researcher,
		composer:      deps.Composer,
		publisher:     deps.Publisher,
		notifier:      deps.Notifier,
		logger:        deps.Logger,
		maxPerRun:     deps.MaxPerRun,
		researchDelay: deps.ResearchDelay,
		itemDelay:     deps.ItemDelay,
		wait:          deps.Wait,
		newRunID:      deps.NewRunID,
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.wait == nil {
		p.wait = sleep
	}
	if p.newRunID == nil {
		p.newRunID = uuid.NewString
	}
	return p
}

// Plan fetches candidates and selects the batch without side effects.
func (p *Pipeline) Plan(ctx context.Context) (domain.RunReport, []domain.CandidateItem, error) {
	report := domain.RunReport{RunID: p.newRunID()}
	batch, err := p.plan(ctx, &report, p.logger.With("run_id", report.RunID))
	return report, batch, err
}

// Run executes one full pass. Per-item failures are counted and skipped;
// ledger failures and cancellation end the run with an error.
func (p *Pipeline) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{RunID: p.newRunID()}
	log := p.logger.With("run_id", report.RunID)
	started := time.Now()

	if p.composer == nil || p.publisher == nil {
		return report, fmt.Errorf("pipeline is missing its composer or publisher")
	}

	batch, err := p.plan(ctx, &report, log)
	if err != nil || len(batch) == 0 {
		return report, err
	}

	for i, item := range batch {
		if i > 0 {
			if err := p.wait(ctx, p.itemDelay); err != nil {
				return report, err
			}
		}

		if err := p.processItem(ctx, log, item, &report); err != nil {
			return report, err
		}
	}

	log.Info("run finished",
		"source", report.Source,
		"fetched", report.Fetched,
		"new", report.New,
		"deferred", report.Deferred,
		"published", report.Published,
		"failed", report.Failed,
		"duration", time.Since(started).Round(time.Millisecond),
	)
	return report, nil
}

func (p *Pipeline) plan(ctx context.Context, report *domain.RunReport, log *slog.Logger) ([]domain.CandidateItem, error) {
	if p.source == nil || p.ledger == nil {
		return nil, fmt.Errorf("pipeline is missing its source or ledger")
	}

	items, source, err := p.source.Fetch(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoNewItems) {
			log.Info("no new items", "reason", err)
			return nil, nil
		}
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	report.Source = source
	report.Fetched = len(items)
	if len(items) == 0 {
		log.Info("no new items", "source", source)
		return nil, nil
	}

	records, err := p.ledger.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	batch, deferred := SelectNew(items, domain.ProcessedIDs(records), p.maxPerRun)
	report.New = len(batch) + len(deferred)
	report.Deferred = len(deferred)

	log.Info("items selected",
		"source", source,
		"fetched", len(items),
		"batch", len(batch),
		"deferred", len(deferred),
	)
	return batch, nil
}

func (p *Pipeline) processItem(ctx context.Context, log *slog.Logger, item domain.CandidateItem, report *domain.RunReport) error {
	log = log.With("item_id", item.ID)

	var sources []domain.SourceReference
	if p.researcher != nil {
		sources = p.researcher.Research(ctx, item.Topic())
	}
	log.Debug("research done", "sources", len(sources))

	if err := p.wait(ctx, p.researchDelay); err != nil {
		return err
	}

	article, err := p.composer.Compose(ctx, item, sources)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		report.Failed++
		log.Warn("skipping item, composition failed", "error", err)
		return nil
	}

	result, err := p.publisher.Publish(ctx, article, item)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		report.Failed++
		log.Warn("skipping item, publish failed", "title", article.Title, "error", err)
		return nil
	}

	if err := p.ledger.Append(ctx, item.ID); err != nil {
		return fmt.Errorf("record item %s: %w", item.ID, err)
	}

	report.Published++
	report.Locations = append(report.Locations, result.Location)
	log.Info("item published", "title", article.Title, "location", result.Location)

	if p.notifier != nil {
		message := fmt.Sprintf("New article: %s\n%s", article.Title, result.Location)
		if err := p.notifier.Notify(ctx, message); err != nil {
			log.Warn("notification failed", "error", err)
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
