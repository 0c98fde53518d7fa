package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"PaperCrawler/internal/config"
	"PaperCrawler/internal/domain"
	"PaperCrawler/internal/ports"
)

// CrawlerDeps wires all driven adapters into the crawl loop.
type CrawlerDeps struct {
	Fetcher     ports.PageFetcher
	Extractor   ports.RecordExtractor
	Sink        ports.RecordSink
	Pacer       ports.Pacer
	Checkpoints ports.CheckpointStore
	Logger      *slog.Logger
	Now         func() time.Time
}

// Crawler walks a year range: one page per year, every record persisted in order.
type Crawler struct {
	cfg         config.CrawlConfig
	fetcher     ports.PageFetcher
	extractor   ports.RecordExtractor
	sink        ports.RecordSink
	pacer       ports.Pacer
	checkpoints ports.CheckpointStore
	logger      *slog.Logger
	now         func() time.Time
}

// NewCrawler constructs the crawl loop. cfg is copied and never modified.
// Checkpoints may be nil, in which case every year is crawled.
func NewCrawler(cfg config.CrawlConfig, deps CrawlerDeps) *Crawler {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Crawler{
		cfg:         cfg,
		fetcher:     deps.Fetcher,
		extractor:   deps.Extractor,
		sink:        deps.Sink,
		pacer:       deps.Pacer,
		checkpoints: deps.Checkpoints,
		logger:      deps.Logger,
		now:         now,
	}
}

// YearURL builds the listing URL of one year.
func YearURL(baseURL string, year int) string {
	return fmt.Sprintf("%s/%d", baseURL, year)
}

// Run crawls StartYear..EndYear inclusive. A reversed range visits nothing.
// The returned report covers every year visited, including the one that
// aborted the run; the error is non-nil only when the run stopped early.
func (c *Crawler) Run(ctx context.Context) (domain.Report, error) {
	report := domain.Report{StartedAt: c.now()}

	if c.fetcher == nil || c.extractor == nil || c.sink == nil {
		return c.finish(report), fmt.Errorf("crawler is missing a fetcher, extractor or sink")
	}

	c.info("crawl started", "base_url", c.cfg.BaseURL, "start_year", c.cfg.StartYear, "end_year", c.cfg.EndYear,
		"pause_after", c.cfg.PauseAfter, "delay", c.cfg.Delay)

	for year := c.cfg.StartYear; year <= c.cfg.EndYear; year++ {
		yearURL := YearURL(c.cfg.BaseURL, year)

		done, err := c.alreadyCompleted(ctx, year)
		if err != nil {
			report.Years = append(report.Years, domain.YearResult{Year: year, URL: yearURL, Status: domain.StatusFailed, Err: err})
			return c.finish(report), err
		}
		if done {
			c.info("year already completed", "year", year)
			report.Years = append(report.Years, domain.YearResult{Year: year, URL: yearURL, Status: domain.StatusResumed})
			continue
		}

		result, err := c.crawlYear(ctx, year, yearURL)
		report.Years = append(report.Years, result)
		if err != nil {
			c.logError("crawl aborted", "year", year, "error", err)
			return c.finish(report), err
		}
	}

	c.info("crawl finished", "years", len(report.Years), "records", report.Records())
	return c.finish(report), nil
}

func (c *Crawler) finish(report domain.Report) domain.Report {
	report.FinishedAt = c.now()
	return report
}

func (c *Crawler) crawlYear(ctx context.Context, year int, yearURL string) (domain.YearResult, error) {
	result := domain.YearResult{Year: year, URL: yearURL}

	for {
		result.Attempts++
		n, err := c.processYear(ctx, yearURL)
		result.Records += n

		if err == nil {
			result.Status = domain.StatusDone
			c.info("year crawled", "year", year, "records", n)
			c.markCompleted(ctx, year, result.Records)
			return result, nil
		}

		yearErr := &domain.YearError{Year: year, URL: yearURL, Err: err}
		result.Err = yearErr

		if ctxErr := ctx.Err(); ctxErr != nil {
			result.Status = domain.StatusFailed
			return result, yearErr
		}

		switch c.actionFor(err) {
		case config.ActionRetry:
			if result.Attempts <= c.cfg.MaxRetries {
				c.warn("retrying year", "year", year, "attempt", result.Attempts, "error", err)
				if pauseErr := c.pause(ctx); pauseErr != nil {
					result.Status = domain.StatusFailed
					return result, &domain.YearError{Year: year, URL: yearURL, Err: pauseErr}
				}
				continue
			}
			result.Status = domain.StatusFailed
			return result, fmt.Errorf("giving up after %d attempts: %w", result.Attempts, yearErr)
		case config.ActionSkip:
			c.warn("skipping year", "year", year, "error", err)
			result.Status = domain.StatusSkipped
			return result, nil
		default:
			result.Status = domain.StatusFailed
			return result, yearErr
		}
	}
}

// processYear fetches, extracts and persists one page, returning the number
// of records written before any failure.
func (c *Crawler) processYear(ctx context.Context, yearURL string) (int, error) {
	c.debug("fetch page", "url", yearURL)
	html, err := c.fetcher.Fetch(ctx, yearURL)
	if err != nil {
		return 0, err
	}

	if c.cfg.PauseAfter == config.PauseAfterPage {
		if err := c.pause(ctx); err != nil {
			return 0, err
		}
	}

	papers, err := c.extractor.Extract(html)
	if err != nil {
		return 0, err
	}
	c.debug("page extracted", "url", yearURL, "records", len(papers))

	written := 0
	for _, paper := range papers {
		if err := c.sink.Persist(ctx, paper); err != nil {
			return written, err
		}
		written++

		if c.cfg.PauseAfter != config.PauseAfterPage {
			if err := c.pause(ctx); err != nil {
				return written, err
			}
		}
	}

	return written, nil
}

func (c *Crawler) actionFor(err error) string {
	switch domain.Kind(err) {
	case domain.ErrNetwork:
		return c.cfg.OnError.Network
	case domain.ErrParse:
		return c.cfg.OnError.Parse
	case domain.ErrIO:
		// Re-running a year after a failed write would duplicate what was already appended.
		if c.cfg.OnError.IO == config.ActionRetry {
			return config.ActionAbort
		}
		return c.cfg.OnError.IO
	default:
		return config.ActionAbort
	}
}

func (c *Crawler) pause(ctx context.Context) error {
	if c.pacer == nil {
		return ctx.Err()
	}
	return c.pacer.Pause(ctx)
}

func (c *Crawler) alreadyCompleted(ctx context.Context, year int) (bool, error) {
	if c.checkpoints == nil {
		return false, nil
	}
	done, err := c.checkpoints.Completed(ctx, c.cfg.BaseURL, year)
	if err != nil {
		return false, fmt.Errorf("load checkpoint for %d: %w", year, err)
	}
	return done, nil
}

func (c *Crawler) markCompleted(ctx context.Context, year, records int) {
	if c.checkpoints == nil {
		return
	}
	err := c.checkpoints.MarkCompleted(ctx, domain.Checkpoint{
		BaseURL:     c.cfg.BaseURL,
		Year:        year,
		Records:     records,
		CompletedAt: c.now(),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		c.warn("could not record checkpoint", "year", year, "error", err)
	}
}

func (c *Crawler) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Crawler) info(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Crawler) warn(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *Crawler) logError(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Error(msg, args...)
	}
}
