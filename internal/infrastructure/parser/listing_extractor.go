package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"PaperCrawler/internal/domain"
	"PaperCrawler/internal/ports"
	"PaperCrawler/internal/scanner"
)

// ListingExtractor pulls paper records out of a year listing page.
type ListingExtractor struct {
	layout string
	sel    scanner.Selectors
}

var _ ports.RecordExtractor = (*ListingExtractor)(nil)

// NewListingExtractor binds an extractor to a set of selectors.
func NewListingExtractor(layout string, sel scanner.Selectors) *ListingExtractor {
	return &ListingExtractor{layout: layout, sel: sel}
}

// Layout names the markup structure this extractor expects.
func (e *ListingExtractor) Layout() string {
	return e.layout
}

// Extract returns one record per listing item, in document order.
// A page without listing items yields no records and no error; an item
// missing one of its fields fails the whole page with domain.ErrParse.
func (e *ListingExtractor) Extract(html []byte) ([]domain.Paper, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse document: %v", domain.ErrParse, err)
	}

	var (
		papers  []domain.Paper
		itemErr error
	)

	doc.Find(e.sel.Item).EachWithBreak(func(i int, item *goquery.Selection) bool {
		paper, err := e.parseItem(item)
		if err != nil {
			itemErr = fmt.Errorf("item %d: %w", i, err)
			return false
		}
		papers = append(papers, paper)
		return true
	})

	if itemErr != nil {
		return nil, itemErr
	}

	return papers, nil
}

func (e *ListingExtractor) parseItem(item *goquery.Selection) (domain.Paper, error) {
	title := item.Find(e.sel.Title).First()
	if title.Length() == 0 {
		return domain.Paper{}, missing("title", e.sel.Title)
	}

	abstract := item.Find(e.sel.Abstract).First()
	if abstract.Length() == 0 {
		return domain.Paper{}, missing("abstract", e.sel.Abstract)
	}

	link := item.Find(e.sel.Link).First()
	if link.Length() == 0 {
		return domain.Paper{}, missing("link", e.sel.Link)
	}
	href, ok := link.Attr("href")
	if !ok {
		return domain.Paper{}, fmt.Errorf("%w: link %q has no href", domain.ErrParse, e.sel.Link)
	}

	return domain.Paper{
		Title:    strings.TrimSpace(title.Text()),
		Abstract: strings.TrimSpace(abstract.Text()),
		Link:     strings.TrimSpace(href),
	}, nil
}

func missing(field, selector string) error {
	return fmt.Errorf("%w: %s element %q not found", domain.ErrParse, field, selector)
}
