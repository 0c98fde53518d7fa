package parser

import (
	"fmt"
	"log/slog"

	"PaperCrawler/internal/config"
	"PaperCrawler/internal/scanner"
)

// FromConfig resolves the configured layout and applies selector overrides on top.
// A blank layout name means the selectors are given entirely by the config.
func FromConfig(reg *scanner.Registry, cfg config.LayoutConfig, log *slog.Logger) (*ListingExtractor, error) {
	override := scanner.Selectors{
		Item:     cfg.Selectors.Item,
		Title:    cfg.Selectors.Title,
		Abstract: cfg.Selectors.Abstract,
		Link:     cfg.Selectors.Link,
	}

	name := cfg.Name
	var base scanner.Selectors
	if name != "" {
		if reg == nil {
			return nil, fmt.Errorf("layout registry is not configured")
		}
		layout, err := reg.Resolve(name)
		if err != nil {
			return nil, err
		}
		base = layout.Selectors
	} else {
		name = "custom"
	}

	sel := base.Override(override)
	if !sel.Complete() {
		return nil, fmt.Errorf("layout %s: incomplete selectors %+v", name, sel)
	}

	debug(log, "layout resolved", "layout", name,
		"item", sel.Item, "title", sel.Title, "abstract", sel.Abstract, "link", sel.Link)

	return NewListingExtractor(name, sel), nil
}

func debug(log *slog.Logger, msg string, args ...interface{}) {
	if log != nil {
		log.Debug(msg, args...)
	}
}
