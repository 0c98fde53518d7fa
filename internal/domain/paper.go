package domain

import "time"

// Paper is one listing item extracted from a year page.
type Paper struct {
	Title    string
	Abstract string
	Link     string
}

// YearStatus enumerates the outcome of one year of the crawl.
type YearStatus string

const (
	StatusDone    YearStatus = "done"
	StatusSkipped YearStatus = "skipped"
	StatusResumed YearStatus = "resumed"
	StatusFailed  YearStatus = "failed"
)

// YearResult captures what happened to a single year page.
type YearResult struct {
	Year     int
	URL      string
	Status   YearStatus
	Records  int
	Attempts int
	Err      error
}

// Report is the outcome of one crawl run, in year order.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Years      []YearResult
}

// Records returns the number of records persisted during the run.
func (r Report) Records() int {
	total := 0
	for _, y := range r.Years {
		total += y.Records
	}
	return total
}

// Count returns how many years ended with the given status.
func (r Report) Count(status YearStatus) int {
	n := 0
	for _, y := range r.Years {
		if y.Status == status {
			n++
		}
	}
	return n
}

// Checkpoint marks a year as fully persisted for a base URL.
type Checkpoint struct {
	BaseURL     string
	Year        int
	Records     int
	CompletedAt time.Time
}
