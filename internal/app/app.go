package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"QuotePress/internal/composer"
	"QuotePress/internal/config"
	"QuotePress/internal/domain"
	"QuotePress/internal/infrastructure/contentstore"
	"QuotePress/internal/infrastructure/llm"
	"QuotePress/internal/infrastructure/pages"
	"QuotePress/internal/infrastructure/parser"
	"QuotePress/internal/infrastructure/scheduler"
	"QuotePress/internal/infrastructure/search"
	"QuotePress/internal/infrastructure/storage"
	"QuotePress/internal/infrastructure/telegram"
	"QuotePress/internal/infrastructure/wordpress"
	"QuotePress/internal/logging"
	"QuotePress/internal/ports"
	"QuotePress/internal/scanner"
	"QuotePress/internal/usecase"
)

const stopTimeout = 2 * time.Minute

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	closers  []func() error
}

// New validates cfg and builds every adapter. Nothing touches the network here
// except SDK initialisation.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baseLogger == nil {
		baseLogger = logging.NewWithFormat(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	}

	source := NewSource(cfg, baseLogger)
	if _, err := source.Strategies(); err != nil {
		return nil, fmt.Errorf("%w: sources.order: %v", domain.ErrConfig, err)
	}

	a := &Application{cfg: cfg, logger: baseLogger}

	ledger, closeLedger, err := OpenLedger(ctx, cfg.Ledger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeLedger)

	generator, err := llm.New(ctx, cfg.Generator)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("generator: %w", err)
	}

	publisher, err := newPublisher(ctx, cfg.Publisher, baseLogger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:        source,
		Ledger:        ledger,
		Researcher:    search.NewDuckDuckGo(cfg.Research, cfg.Profile.Hashtag, nil, baseLogger.With("component", "research")),
		Composer:      composer.New(generator, cfg.Profile.Hashtag, baseLogger.With("component", "composer")),
		Publisher:     publisher,
		Notifier:      notifier,
		Logger:        baseLogger.With("component", "pipeline"),
		MaxPerRun:     cfg.Pipeline.Cap(),
		ResearchDelay: cfg.Pipeline.ResearchDelay,
		ItemDelay:     cfg.Pipeline.ItemDelay,
	})
	return a, nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) (domain.RunReport, error) {
	return a.pipeline.Run(ctx)
}

// Plan fetches and selects without researching or publishing.
func (a *Application) Plan(ctx context.Context) (domain.RunReport, []domain.CandidateItem, error) {
	return a.pipeline.Plan(ctx)
}

// Watch runs the pipeline until ctx is cancelled. A positive interval wins;
// otherwise the configured cron expression, then the configured interval.
func (a *Application) Watch(ctx context.Context, interval time.Duration) error {
	driver, err := a.watchDriver(interval)
	if err != nil {
		return err
	}
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return sched.Stop(stopCtx)
}

func (a *Application) watchDriver(interval time.Duration) (ports.Scheduler, error) {
	if interval <= 0 {
		if expr := strings.TrimSpace(a.cfg.Scheduler.Cron); expr != "" {
			driver, err := scheduler.NewCronScheduler(expr)
			if err != nil {
				return nil, fmt.Errorf("%w: scheduler.cron: %v", domain.ErrConfig, err)
			}
			a.logger.Info("watching", "cron", expr, "next", driver.Next(time.Now()))
			return driver, nil
		}
		interval = a.cfg.Scheduler.Interval
	}
	a.logger.Info("watching", "interval", interval)
	return scheduler.NewIntervalScheduler(interval), nil
}

// Close releases held resources such as the ledger database.
func (a *Application) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewRegistry registers every acquisition strategy.
func NewRegistry(cfg config.Config, logger *slog.Logger) *scanner.Registry {
	src := cfg.Sources
	registry := scanner.NewRegistry()
	registry.Register(parser.NewXAPIScanner(src.XAPI, nil, logger.With("component", "scanner.xapi")))
	registry.Register(parser.NewNitterScanner(src.Nitter, nil, logger.With("component", "scanner.nitter")))
	registry.Register(parser.NewRSSScanner(src.RSS, nil, src.Nitter.UserAgent, logger.With("component", "scanner.rss")))
	registry.Register(parser.NewManualScanner(src.Manual.Path, logger.With("component", "scanner.manual")))
	return registry
}

// NewSource builds the ordered strategy chain for the configured profile.
func NewSource(cfg config.Config, logger *slog.Logger) *parser.StrategySource {
	query := scanner.Query{
		Username:     cfg.Profile.Username,
		Hashtag:      cfg.Profile.Hashtag,
		RequireQuote: cfg.Profile.QuoteRequired(),
	}
	return parser.NewStrategySource(NewRegistry(cfg, logger), cfg.Sources.Order, query, logger.With("component", "source"))
}

// OpenLedger opens the configured ledger backend. The returned func releases it.
func OpenLedger(ctx context.Context, cfg config.LedgerConfig) (ports.Ledger, func() error, error) {
	switch cfg.Driver {
	case "", "json":
		return storage.NewJSONLedger(cfg.Path), func() error { return nil }, nil
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.Path
		}
		ledger, err := storage.OpenSQLiteLedger(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return ledger, ledger.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown ledger driver %q", domain.ErrConfig, cfg.Driver)
	}
}

func newPublisher(ctx context.Context, cfg config.PublisherConfig, logger *slog.Logger) (ports.Publisher, error) {
	switch cfg.Mode {
	case config.ModeWordPress, "":
		return wordpress.NewPublisher(cfg.WordPress, logger.With("component", "publisher.wordpress")), nil
	case config.ModePages:
		store, err := newContentStore(ctx, cfg.Pages)
		if err != nil {
			return nil, err
		}
		return pages.NewPublisher(store, cfg.Pages, logger.With("component", "publisher.pages")), nil
	default:
		return nil, fmt.Errorf("%w: unknown publisher mode %q", domain.ErrConfig, cfg.Mode)
	}
}

func newContentStore(ctx context.Context, cfg config.PagesConfig) (ports.ContentStore, error) {
	switch cfg.Store {
	case "github", "":
		return contentstore.NewGitHubStore(ctx, cfg.GitHub), nil
	case "s3":
		store, err := contentstore.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown pages store %q", domain.ErrConfig, cfg.Store)
	}
}
