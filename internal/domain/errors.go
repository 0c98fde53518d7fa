package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the crawl stages. Stage errors wrap exactly one of them.
var (
	ErrNetwork = errors.New("network error")
	ErrParse   = errors.New("parse error")
	ErrIO      = errors.New("io error")
)

// YearError attaches the year and URL being crawled to a stage error.
type YearError struct {
	Year int
	URL  string
	Err  error
}

func (e *YearError) Error() string {
	return fmt.Sprintf("year %d (%s): %v", e.Year, e.URL, e.Err)
}

func (e *YearError) Unwrap() error {
	return e.Err
}

// Kind reports which error kind err wraps, or nil when it wraps none.
func Kind(err error) error {
	for _, kind := range []error{ErrNetwork, ErrParse, ErrIO} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
