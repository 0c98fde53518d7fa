package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"PaperCrawler/internal/config"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "papercrawler",
		Short: "Crawl a journal's yearly paper listings into a text file",
		Long: `papercrawler visits {base_url}/{year} for every year of a range, extracts
each listed paper's title, abstract and link, and appends them to papers.txt.

Use "dump" to save a readable copy of one page when working out a site's markup.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "config file (default: $PAPERCRAWLER_CONFIG, else built-in defaults)")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().String("base-url", "", "journal archive URL; years are appended as /{year}")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewDumpCmd())
	cmd.AddCommand(NewCheckpointsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// envPrefix names the environment variables that mirror flags:
// --start-year is also read from PAPERCRAWLER_START_YEAR.
const envPrefix = "PAPERCRAWLER"

// newViper binds cmd's flags and their PAPERCRAWLER_* environment variables.
// An explicitly set flag wins over its variable.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

// loadConfig reads the config file and environment, then applies every
// flag or PAPERCRAWLER_* variable that is set for cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v, err := newViper(cmd)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return config.Config{}, err
	}

	// Keys without a flag on cmd are ignored, so a crawl variable never leaks into dump.
	set := func(name string) bool {
		return cmd.Flags().Lookup(name) != nil && v.IsSet(name)
	}

	if set("log-level") {
		cfg.Logging.Level = v.GetString("log-level")
	}
	if set("base-url") {
		cfg.Crawl.BaseURL = v.GetString("base-url")
	}
	if set("start-year") {
		cfg.Crawl.StartYear = v.GetInt("start-year")
	}
	if set("end-year") {
		cfg.Crawl.EndYear = v.GetInt("end-year")
	}
	if set("delay") {
		cfg.Crawl.Delay = v.GetDuration("delay")
	}
	if set("timeout") {
		cfg.Crawl.Timeout = v.GetDuration("timeout")
	}
	if set("pause-after") {
		cfg.Crawl.PauseAfter = v.GetString("pause-after")
	}
	if set("max-retries") {
		cfg.Crawl.MaxRetries = v.GetInt("max-retries")
	}
	if set("on-network-error") {
		cfg.Crawl.OnError.Network = v.GetString("on-network-error")
	}
	if set("on-parse-error") {
		cfg.Crawl.OnError.Parse = v.GetString("on-parse-error")
	}
	if set("output") {
		cfg.Output.Papers = v.GetString("output")
	}
	if set("layout") {
		cfg.Layout.Name = v.GetString("layout")
	}
	if set("checkpoint") {
		cfg.Checkpoint.Enabled = v.GetBool("checkpoint")
	}
	if set("checkpoint-path") {
		cfg.Checkpoint.Path = v.GetString("checkpoint-path")
	}
	if set("out") {
		cfg.Output.Dump = v.GetString("out")
	}

	return cfg, nil
}

func addCrawlFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("start-year", 0, "first year to crawl (inclusive)")
	f.Int("end-year", 0, "last year to crawl (inclusive)")
	f.Duration("delay", time.Second, "fixed pause applied at the pause point")
	f.Duration("timeout", 0, "HTTP timeout per page (0 waits indefinitely)")
	f.String("pause-after", config.PauseAfterRecord, "where to pause: record or page")
	f.Int("max-retries", 2, "attempts added per year when an error action is retry")
	f.String("on-network-error", config.ActionAbort, "abort, skip or retry")
	f.String("on-parse-error", config.ActionSkip, "abort, skip or retry")
	f.String("output", "papers.txt", "file the records are appended to")
	f.String("layout", "generic", "registered page layout: generic or crad")
	f.Bool("checkpoint", false, "skip years completed by earlier runs and record new ones")
	f.String("checkpoint-path", "", "checkpoint database (default under the XDG data home)")
}
