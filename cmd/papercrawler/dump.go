package main

import (
	"github.com/spf13/cobra"

	"PaperCrawler/internal/app"
	"PaperCrawler/internal/logging"
)

// NewDumpCmd creates the dump command.
func NewDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [url]",
		Short: "Save one page as indented HTML for inspecting its markup",
		Long: `dump fetches a single page with the crawler's headers and writes the whole
document, re-indented one node per line, to output.html (overwritten).
Without an argument the configured dump URL is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var pageURL string
			if len(args) == 1 {
				pageURL = args[0]
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level)
			return app.DumpPage(cmd.Context(), cfg, logger, pageURL)
		},
	}
	cmd.Flags().String("out", "output.html", "file the page is written to")
	return cmd
}
