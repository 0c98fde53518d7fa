package app

import (
	"context"
	"fmt"
	"log/slog"

	"PaperCrawler/internal/config"
	"PaperCrawler/internal/domain"
	"PaperCrawler/internal/infrastructure/fetcher"
	"PaperCrawler/internal/infrastructure/pacer"
	"PaperCrawler/internal/infrastructure/parser"
	"PaperCrawler/internal/infrastructure/storage"
	"PaperCrawler/internal/logging"
	"PaperCrawler/internal/scanner"
	"PaperCrawler/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	crawler     *usecase.Crawler
	dumper      *usecase.Dumper
	checkpoints *storage.SQLiteCheckpointStore
}

// New validates cfg and builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	registry := scanner.NewRegistry()
	extractor, err := parser.FromConfig(registry, cfg.Layout, baseLogger.With("component", "parser"))
	if err != nil {
		return nil, err
	}

	pageFetcher := fetcher.NewHTTPFetcher(nil, cfg.Crawl.UserAgent, cfg.Crawl.Timeout)

	a := &Application{cfg: cfg, logger: baseLogger}

	deps := usecase.CrawlerDeps{
		Fetcher:   pageFetcher,
		Extractor: extractor,
		Sink:      storage.NewTextFileSink(cfg.Output.Papers),
		Pacer:     pacer.NewFixedPacer(cfg.Crawl.Delay),
		Logger:    baseLogger.With("component", "crawler"),
	}
	if cfg.Checkpoint.Enabled {
		store, err := a.openCheckpoints()
		if err != nil {
			return nil, err
		}
		deps.Checkpoints = store
	}

	a.crawler = usecase.NewCrawler(cfg.Crawl, deps)
	a.dumper = usecase.NewDumper(pageFetcher, parser.Prettifier{}, baseLogger.With("component", "dump"))

	return a, nil
}

// Run performs one crawl over the configured year range.
func (a *Application) Run(ctx context.Context) (domain.Report, error) {
	return a.crawler.Run(ctx)
}

// Dump writes a prettified copy of pageURL (or the configured default) to the dump file.
func (a *Application) Dump(ctx context.Context, pageURL string) error {
	if pageURL == "" {
		pageURL = a.cfg.Output.DumpURL
	}
	return a.dumper.Dump(ctx, pageURL, a.cfg.Output.Dump)
}

// DumpPage saves pageURL (or the configured default) to the dump file. Only
// the fetch and output settings of cfg are used, so the crawl range is not
// validated and the checkpoint store is never opened.
func DumpPage(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, pageURL string) error {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if pageURL == "" {
		pageURL = cfg.Output.DumpURL
	}
	if cfg.Output.Dump == "" {
		return fmt.Errorf("invalid configuration: output.dump is required")
	}

	pageFetcher := fetcher.NewHTTPFetcher(nil, cfg.Crawl.UserAgent, cfg.Crawl.Timeout)
	dumper := usecase.NewDumper(pageFetcher, parser.Prettifier{}, baseLogger.With("component", "dump"))
	return dumper.Dump(ctx, pageURL, cfg.Output.Dump)
}

// Checkpoints lists completion markers for the configured base URL.
func (a *Application) Checkpoints(ctx context.Context) ([]domain.Checkpoint, error) {
	store, err := a.openCheckpoints()
	if err != nil {
		return nil, err
	}
	return store.List(ctx, a.cfg.Crawl.BaseURL)
}

// ResetCheckpoints forgets every completed year of the configured base URL.
func (a *Application) ResetCheckpoints(ctx context.Context) (int64, error) {
	store, err := a.openCheckpoints()
	if err != nil {
		return 0, err
	}
	return store.Reset(ctx, a.cfg.Crawl.BaseURL)
}

// Close releases resources held by the application.
func (a *Application) Close() error {
	if a.checkpoints == nil {
		return nil
	}
	err := a.checkpoints.Close()
	a.checkpoints = nil
	return err
}

func (a *Application) openCheckpoints() (*storage.SQLiteCheckpointStore, error) {
	if a.checkpoints != nil {
		return a.checkpoints, nil
	}
	store, err := storage.OpenCheckpointStore(a.cfg.Checkpoint.Path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("checkpoint store opened", "path", a.cfg.Checkpoint.Path)
	a.checkpoints = store
	return store, nil
}
