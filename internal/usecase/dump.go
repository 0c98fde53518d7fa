package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"PaperCrawler/internal/domain"
	"PaperCrawler/internal/ports"
)

// Dumper saves one page as readable HTML so its markup can be inspected by hand.
type Dumper struct {
	fetcher  ports.PageFetcher
	renderer ports.DocumentRenderer
	logger   *slog.Logger
}

// NewDumper wires the fetcher and renderer used for debug dumps.
func NewDumper(fetcher ports.PageFetcher, renderer ports.DocumentRenderer, logger *slog.Logger) *Dumper {
	return &Dumper{fetcher: fetcher, renderer: renderer, logger: logger}
}

// Dump fetches pageURL and overwrites outPath with the rendered document.
func (d *Dumper) Dump(ctx context.Context, pageURL, outPath string) error {
	raw, err := d.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("dump %s: %w", pageURL, err)
	}

	pretty, err := d.renderer.Render(raw)
	if err != nil {
		return fmt.Errorf("dump %s: %w: %w", pageURL, domain.ErrParse, err)
	}

	if err := os.WriteFile(outPath, []byte(pretty), 0o644); err != nil {
		return fmt.Errorf("dump %s: %w: %w", pageURL, domain.ErrIO, err)
	}

	if d.logger != nil {
		d.logger.Info("page content saved", "url", pageURL, "path", outPath, "bytes", len(pretty))
	}
	return nil
}
