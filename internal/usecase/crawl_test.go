package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperCrawler/internal/config"
	"PaperCrawler/internal/domain"
	"PaperCrawler/internal/infrastructure/storage"
)

const testBase = "http://journal.test/archive"

// fakeFetcher echoes the URL as the page body so fakeExtractor can key on it.
type fakeFetcher struct {
	calls []string
	fail  map[string][]error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if queue := f.fail[url]; len(queue) > 0 {
		f.fail[url] = queue[1:]
		if queue[0] != nil {
			return nil, queue[0]
		}
	}
	return []byte(url), nil
}

type fakeExtractor struct {
	pages map[string][]domain.Paper
	bad   map[string]bool
}

func (e *fakeExtractor) Extract(html []byte) ([]domain.Paper, error) {
	url := string(html)
	if e.bad[url] {
		return nil, fmt.Errorf("item 0: %w: title element not found", domain.ErrParse)
	}
	return e.pages[url], nil
}

type memSink struct {
	records []domain.Paper
	failAt  int
}

func (s *memSink) Persist(_ context.Context, p domain.Paper) error {
	if s.failAt > 0 && len(s.records)+1 == s.failAt {
		return fmt.Errorf("%w: disk full", domain.ErrIO)
	}
	s.records = append(s.records, p)
	return nil
}

type countingPacer struct{ pauses int }

func (p *countingPacer) Pause(ctx context.Context) error {
	p.pauses++
	return ctx.Err()
}

type memCheckpoints struct {
	done map[int]bool
}

func (m *memCheckpoints) Completed(_ context.Context, _ string, year int) (bool, error) {
	return m.done[year], nil
}

func (m *memCheckpoints) MarkCompleted(_ context.Context, cp domain.Checkpoint) error {
	if m.done == nil {
		m.done = map[int]bool{}
	}
	m.done[cp.Year] = true
	return nil
}

func papers(prefix string, n int) []domain.Paper {
	out := make([]domain.Paper, n)
	for i := range out {
		out[i] = domain.Paper{
			Title:    fmt.Sprintf("%s title %d", prefix, i),
			Abstract: fmt.Sprintf("%s abstract %d", prefix, i),
			Link:     fmt.Sprintf("/%s/%d", prefix, i),
		}
	}
	return out
}

func crawlConfig(start, end int) config.CrawlConfig {
	cfg := config.Default().Crawl
	cfg.BaseURL = testBase
	cfg.StartYear = start
	cfg.EndYear = end
	return cfg
}

type harness struct {
	fetcher   *fakeFetcher
	extractor *fakeExtractor
	sink      *memSink
	pacer     *countingPacer
}

func newHarness() *harness {
	return &harness{
		fetcher:   &fakeFetcher{fail: map[string][]error{}},
		extractor: &fakeExtractor{pages: map[string][]domain.Paper{}, bad: map[string]bool{}},
		sink:      &memSink{},
		pacer:     &countingPacer{},
	}
}

func (h *harness) crawler(cfg config.CrawlConfig) *Crawler {
	return NewCrawler(cfg, CrawlerDeps{
		Fetcher:   h.fetcher,
		Extractor: h.extractor,
		Sink:      h.sink,
		Pacer:     h.pacer,
	})
}

func TestRunFetchesOncePerYear(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.extractor.pages[testBase+"/2020"] = papers("a", 2)
	h.extractor.pages[testBase+"/2022"] = papers("c", 1)

	report, err := h.crawler(crawlConfig(2020, 2022)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{testBase + "/2020", testBase + "/2021", testBase + "/2022"}, h.fetcher.calls)
	require.Len(t, report.Years, 3)
	assert.Equal(t, 3, report.Records())
	assert.Equal(t, 3, report.Count(domain.StatusDone))
	assert.Zero(t, report.Years[1].Records, "a page without items writes nothing")
	assert.Equal(t, append(papers("a", 2), papers("c", 1)...), h.sink.records)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestRunReversedRangeDoesNothing(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "papers.txt")
	fetcher := &fakeFetcher{}
	c := NewCrawler(crawlConfig(2023, 2020), CrawlerDeps{
		Fetcher:   fetcher,
		Extractor: &fakeExtractor{},
		Sink:      storage.NewTextFileSink(out),
	})

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fetcher.calls)
	assert.Empty(t, report.Years)

	_, statErr := os.Stat(out)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRunNetworkFailureAbortsButKeepsWrittenRecords(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "papers.txt")
	fetcher := &fakeFetcher{fail: map[string][]error{
		testBase + "/2021": {fmt.Errorf("%w: connection refused", domain.ErrNetwork)},
	}}
	extractor := &fakeExtractor{pages: map[string][]domain.Paper{
		testBase + "/2020": {{Title: "A", Abstract: "B", Link: "C"}},
		testBase + "/2022": papers("never", 1),
	}}

	c := NewCrawler(crawlConfig(2020, 2022), CrawlerDeps{
		Fetcher:   fetcher,
		Extractor: extractor,
		Sink:      storage.NewTextFileSink(out),
	})

	report, err := c.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)

	var yearErr *domain.YearError
	require.True(t, errors.As(err, &yearErr))
	assert.Equal(t, 2021, yearErr.Year)
	assert.Equal(t, testBase+"/2021", yearErr.URL)

	assert.Equal(t, []string{testBase + "/2020", testBase + "/2021"}, fetcher.calls, "no year after the fault is visited")
	require.Len(t, report.Years, 2)
	assert.Equal(t, domain.StatusFailed, report.Years[1].Status)

	got, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, "Title: A\nAbstract: B\nLink: C\n\n", string(got))
}

func TestRunParseFailureSkipsYearByDefault(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.extractor.bad[testBase+"/2020"] = true
	h.extractor.pages[testBase+"/2021"] = papers("b", 1)

	report, err := h.crawler(crawlConfig(2020, 2021)).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Years, 2)
	assert.Equal(t, domain.StatusSkipped, report.Years[0].Status)
	assert.ErrorIs(t, report.Years[0].Err, domain.ErrParse)
	assert.Equal(t, domain.StatusDone, report.Years[1].Status)
	assert.Equal(t, papers("b", 1), h.sink.records)
}

func TestRunParseFailureAbortWhenConfigured(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.extractor.bad[testBase+"/2020"] = true

	cfg := crawlConfig(2020, 2021)
	cfg.OnError.Parse = config.ActionAbort

	_, err := h.crawler(cfg).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Len(t, h.fetcher.calls, 1)
}

func TestRunNetworkSkipWhenConfigured(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fetcher.fail[testBase+"/2020"] = []error{fmt.Errorf("%w: 503", domain.ErrNetwork)}
	h.extractor.pages[testBase+"/2021"] = papers("b", 1)

	cfg := crawlConfig(2020, 2021)
	cfg.OnError.Network = config.ActionSkip

	report, err := h.crawler(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, report.Years[0].Status)
	assert.Len(t, h.sink.records, 1)
}

func TestRunRetryRefetches(t *testing.T) {
	t.Parallel()

	h := newHarness()
	netErr := fmt.Errorf("%w: timeout", domain.ErrNetwork)
	h.fetcher.fail[testBase+"/2020"] = []error{netErr, netErr}
	h.extractor.pages[testBase+"/2020"] = papers("a", 1)

	cfg := crawlConfig(2020, 2020)
	cfg.OnError.Network = config.ActionRetry
	cfg.MaxRetries = 2

	report, err := h.crawler(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.fetcher.calls, 3)
	assert.Equal(t, 3, report.Years[0].Attempts)
	assert.Equal(t, domain.StatusDone, report.Years[0].Status)
	assert.Equal(t, 1, report.Years[0].Records)
	assert.Equal(t, 3, h.pacer.pauses, "two pauses before retries and one after the record")
}

func TestRunRetryGivesUp(t *testing.T) {
	t.Parallel()

	h := newHarness()
	netErr := fmt.Errorf("%w: timeout", domain.ErrNetwork)
	h.fetcher.fail[testBase+"/2020"] = []error{netErr, netErr, netErr}

	cfg := crawlConfig(2020, 2021)
	cfg.OnError.Network = config.ActionRetry
	cfg.MaxRetries = 1

	report, err := h.crawler(cfg).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Contains(t, err.Error(), "giving up after 2 attempts")
	assert.Len(t, h.fetcher.calls, 2)
	assert.Len(t, report.Years, 1)
}

func TestRunIOFailureNeverRetries(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.extractor.pages[testBase+"/2020"] = papers("a", 3)
	h.sink.failAt = 2

	cfg := crawlConfig(2020, 2020)
	cfg.OnError.IO = config.ActionRetry

	report, err := h.crawler(cfg).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.Len(t, h.fetcher.calls, 1)
	assert.Equal(t, 1, report.Years[0].Records)
	assert.Len(t, h.sink.records, 1)
}

func TestRunPausePlacement(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		pauseAfter string
		want       int
	}{
		{config.PauseAfterRecord, 5},
		{config.PauseAfterPage, 3},
	} {
		t.Run(tc.pauseAfter, func(t *testing.T) {
			t.Parallel()

			h := newHarness()
			h.extractor.pages[testBase+"/2020"] = papers("a", 3)
			h.extractor.pages[testBase+"/2022"] = papers("c", 2)

			cfg := crawlConfig(2020, 2022)
			cfg.PauseAfter = tc.pauseAfter

			_, err := h.crawler(cfg).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, h.pacer.pauses)
		})
	}
}

func TestRunSkipsCheckpointedYears(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.extractor.pages[testBase+"/2021"] = papers("b", 2)
	cps := &memCheckpoints{done: map[int]bool{2020: true}}

	c := NewCrawler(crawlConfig(2020, 2021), CrawlerDeps{
		Fetcher:     h.fetcher,
		Extractor:   h.extractor,
		Sink:        h.sink,
		Pacer:       h.pacer,
		Checkpoints: cps,
	})

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{testBase + "/2021"}, h.fetcher.calls)
	assert.Equal(t, domain.StatusResumed, report.Years[0].Status)
	assert.True(t, cps.done[2021], "completed year is marked")

	h.fetcher.calls = nil
	_, err = c.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.fetcher.calls, "second run has nothing left to fetch")
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.extractor.pages[testBase+"/2020"] = papers("a", 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := crawlConfig(2020, 2021)
	cfg.OnError.Network = config.ActionSkip

	_, err := h.crawler(cfg).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, h.fetcher.calls, 1)
}

func TestRunRequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewCrawler(crawlConfig(2020, 2020), CrawlerDeps{}).Run(context.Background())
	assert.Error(t, err)
}

func TestYearURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://example.com/journal/2021", YearURL("http://example.com/journal", 2021))
}
