package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"PaperCrawler/internal/app"
	"PaperCrawler/internal/logging"
)

// NewCheckpointsCmd creates the checkpoints command.
func NewCheckpointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "List or reset the years already completed for the base URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			application, err := app.New(cfg, logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level))
			if err != nil {
				return err
			}
			defer application.Close()

			reset, _ := cmd.Flags().GetBool("reset")
			if reset {
				n, err := application.ResetCheckpoints(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d checkpoint(s) for %s\n", n, cfg.Crawl.BaseURL)
				return nil
			}

			cps, err := application.Checkpoints(cmd.Context())
			if err != nil {
				return err
			}
			printCheckpoints(cmd.OutOrStdout(), cps)
			return nil
		},
	}
	cmd.Flags().Bool("reset", false, "forget every completed year")
	cmd.Flags().String("checkpoint-path", "", "checkpoint database (default under the XDG data home)")
	return cmd
}
