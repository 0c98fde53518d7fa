package ports

import (
	"context"

	"PaperCrawler/internal/domain"
)

// PageFetcher downloads the raw HTML of one page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RecordExtractor turns one listing page into paper records.
type RecordExtractor interface {
	Extract(html []byte) ([]domain.Paper, error)
}

// RecordSink persists a single paper record.
type RecordSink interface {
	Persist(ctx context.Context, paper domain.Paper) error
}

// CheckpointStore remembers which years were fully persisted.
type CheckpointStore interface {
	Completed(ctx context.Context, baseURL string, year int) (bool, error)
	MarkCompleted(ctx context.Context, cp domain.Checkpoint) error
}

// Pacer blocks for the politeness delay.
type Pacer interface {
	Pause(ctx context.Context) error
}

// DocumentRenderer turns raw HTML into a human-readable form.
type DocumentRenderer interface {
	Render(html []byte) (string, error)
}
