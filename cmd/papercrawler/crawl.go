package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"PaperCrawler/internal/app"
	"PaperCrawler/internal/logging"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl every year of the range and append the papers found",
		Long: `crawl fetches {base_url}/{year} for each year from --start-year to
--end-year inclusive and appends one Title/Abstract/Link block per paper to
the output file. A start year after the end year crawls nothing.`,
		Args: cobra.NoArgs,
		RunE: runCrawl,
	}
	addCrawlFlags(cmd)
	return cmd
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level)
	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	report, runErr := application.Run(cmd.Context())
	printReport(cmd.OutOrStdout(), report)
	if runErr != nil {
		return fmt.Errorf("crawl stopped: %w", runErr)
	}
	return nil
}
