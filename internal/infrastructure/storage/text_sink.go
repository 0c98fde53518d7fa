package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"PaperCrawler/internal/domain"
	"PaperCrawler/internal/ports"
)

// TextFileSink appends records to a plain text log.
// Each Persist opens and closes the file, so nothing stays buffered between records.
type TextFileSink struct {
	path string
}

var _ ports.RecordSink = (*TextFileSink)(nil)

// NewTextFileSink targets path; the file is created on the first write.
func NewTextFileSink(path string) *TextFileSink {
	return &TextFileSink{path: path}
}

// Path returns the output file location.
func (s *TextFileSink) Path() string {
	return s.path
}

// Persist appends one four-line block. Failures are reported as domain.ErrIO.
func (s *TextFileSink) Persist(ctx context.Context, paper domain.Paper) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", domain.ErrIO, s.path, err)
	}

	if _, err := f.Write(FormatRecord(paper)); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write %s: %w", domain.ErrIO, s.path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", domain.ErrIO, s.path, err)
	}

	return nil
}

// FormatRecord renders the block written for one paper.
func FormatRecord(paper domain.Paper) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Title: %s\n", paper.Title)
	fmt.Fprintf(&buf, "Abstract: %s\n", paper.Abstract)
	fmt.Fprintf(&buf, "Link: %s\n", paper.Link)
	buf.WriteString("\n")
	return buf.Bytes()
}
