package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	appName = "papercrawler"

	configPathEnv     = "PAPERCRAWLER_CONFIG"
	baseURLEnv        = "PAPERCRAWLER_BASE_URL"
	outputPathEnv     = "PAPERCRAWLER_OUTPUT"
	logLevelEnv       = "PAPERCRAWLER_LOG_LEVEL"
	checkpointPathEnv = "PAPERCRAWLER_CHECKPOINT_PATH"

	// DefaultUserAgent mimics a desktop browser so naive bot filters let requests through.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

	DefaultDumpURL = "https://crad.ict.ac.cn/cn/article/2024/12"
)

// Pause points.
const (
	PauseAfterRecord = "record"
	PauseAfterPage   = "page"
)

// Failure actions.
const (
	ActionAbort = "abort"
	ActionSkip  = "skip"
	ActionRetry = "retry"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL      = errors.New("crawl.base_url is required")
	ErrInvalidBaseURL      = errors.New("crawl.base_url must be an absolute http(s) URL")
	ErrInvalidDelay        = errors.New("crawl.delay must be non-negative")
	ErrInvalidTimeout      = errors.New("crawl.timeout must be non-negative")
	ErrInvalidPausePoint   = errors.New("crawl.pause_after must be 'record' or 'page'")
	ErrInvalidAction       = errors.New("crawl.on_error actions must be one of: abort, skip, retry")
	ErrRetryOnIO           = errors.New("crawl.on_error.io cannot be 'retry': a re-run would append duplicate records")
	ErrInvalidMaxRetries   = errors.New("crawl.max_retries must be non-negative")
	ErrMissingOutputPath   = errors.New("output.papers is required")
	ErrMissingItemSelector = errors.New("layout.selectors.item is required when no layout name is set")
)

// Config holds high-level settings required across the application.
type Config struct {
	Crawl      CrawlConfig      `yaml:"crawl"`
	Layout     LayoutConfig     `yaml:"layout"`
	Output     OutputConfig     `yaml:"output"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CrawlConfig is the immutable description of one year-range crawl.
// A reversed range (StartYear > EndYear) is legal and crawls nothing.
type CrawlConfig struct {
	BaseURL    string        `yaml:"base_url"`
	StartYear  int           `yaml:"start_year"`
	EndYear    int           `yaml:"end_year"`
	UserAgent  string        `yaml:"user_agent"`
	Delay      time.Duration `yaml:"delay"`
	Timeout    time.Duration `yaml:"timeout"`
	PauseAfter string        `yaml:"pause_after"`
	MaxRetries int           `yaml:"max_retries"`
	OnError    FailurePolicy `yaml:"on_error"`
}

// FailurePolicy maps each error kind to the action the crawl loop takes.
type FailurePolicy struct {
	Network string `yaml:"network"`
	Parse   string `yaml:"parse"`
	IO      string `yaml:"io"`
}

// LayoutConfig selects a registered page layout and optionally overrides its selectors.
type LayoutConfig struct {
	Name      string          `yaml:"name"`
	Selectors SelectorsConfig `yaml:"selectors"`
}

// SelectorsConfig holds CSS selectors; blank fields keep the layout's value.
type SelectorsConfig struct {
	Item     string `yaml:"item"`
	Title    string `yaml:"title"`
	Abstract string `yaml:"abstract"`
	Link     string `yaml:"link"`
}

// OutputConfig names the files the crawler writes.
type OutputConfig struct {
	Papers  string `yaml:"papers"`
	Dump    string `yaml:"dump"`
	DumpURL string `yaml:"dump_url"`
}

// CheckpointConfig enables per-year completion markers.
type CheckpointConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if any) and applies environment overrides.
// An empty path falls back to PAPERCRAWLER_CONFIG; no file at all means defaults.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fileCfg fileConfig
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Validate checks the settings the crawl cannot run without.
func (c Config) Validate() error {
	if c.Crawl.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if !isHTTPURL(c.Crawl.BaseURL) {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.Crawl.BaseURL)
	}
	if c.Crawl.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Crawl.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.Crawl.PauseAfter != PauseAfterRecord && c.Crawl.PauseAfter != PauseAfterPage {
		return fmt.Errorf("%w: %q", ErrInvalidPausePoint, c.Crawl.PauseAfter)
	}
	if c.Crawl.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	for _, action := range []string{c.Crawl.OnError.Network, c.Crawl.OnError.Parse, c.Crawl.OnError.IO} {
		if !validAction(action) {
			return fmt.Errorf("%w: %q", ErrInvalidAction, action)
		}
	}
	if c.Crawl.OnError.IO == ActionRetry {
		return ErrRetryOnIO
	}
	if c.Output.Papers == "" {
		return ErrMissingOutputPath
	}
	if c.Layout.Name == "" && c.Layout.Selectors.Item == "" {
		return ErrMissingItemSelector
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(baseURLEnv); v != "" {
		c.Crawl.BaseURL = v
	}

	if v := os.Getenv(outputPathEnv); v != "" {
		c.Output.Papers = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(checkpointPathEnv); v != "" {
		c.Checkpoint.Path = v
	}
}

// fileConfig mirrors Config as read from YAML. Fields whose zero value is a
// meaningful setting are pointers so that an explicit 0 differs from an absent key.
type fileConfig struct {
	Crawl struct {
		BaseURL    string         `yaml:"base_url"`
		StartYear  *int           `yaml:"start_year"`
		EndYear    *int           `yaml:"end_year"`
		UserAgent  string         `yaml:"user_agent"`
		Delay      *time.Duration `yaml:"delay"`
		Timeout    *time.Duration `yaml:"timeout"`
		PauseAfter string         `yaml:"pause_after"`
		MaxRetries *int           `yaml:"max_retries"`
		OnError    FailurePolicy  `yaml:"on_error"`
	} `yaml:"crawl"`
	Layout     LayoutConfig `yaml:"layout"`
	Output     OutputConfig `yaml:"output"`
	Checkpoint struct {
		Enabled *bool  `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"checkpoint"`
	Logging LoggingConfig `yaml:"logging"`
}

func mergeConfig(base Config, override fileConfig) Config {
	if override.Crawl.BaseURL != "" {
		base.Crawl.BaseURL = override.Crawl.BaseURL
	}
	// A single bound in the file means a single-year crawl.
	switch start, end := override.Crawl.StartYear, override.Crawl.EndYear; {
	case start != nil && end != nil:
		base.Crawl.StartYear, base.Crawl.EndYear = *start, *end
	case start != nil:
		base.Crawl.StartYear, base.Crawl.EndYear = *start, *start
	case end != nil:
		base.Crawl.StartYear, base.Crawl.EndYear = *end, *end
	}
	if override.Crawl.UserAgent != "" {
		base.Crawl.UserAgent = override.Crawl.UserAgent
	}
	if override.Crawl.Delay != nil {
		base.Crawl.Delay = *override.Crawl.Delay
	}
	if override.Crawl.Timeout != nil {
		base.Crawl.Timeout = *override.Crawl.Timeout
	}
	if override.Crawl.PauseAfter != "" {
		base.Crawl.PauseAfter = override.Crawl.PauseAfter
	}
	if override.Crawl.MaxRetries != nil {
		base.Crawl.MaxRetries = *override.Crawl.MaxRetries
	}
	if override.Crawl.OnError.Network != "" {
		base.Crawl.OnError.Network = override.Crawl.OnError.Network
	}
	if override.Crawl.OnError.Parse != "" {
		base.Crawl.OnError.Parse = override.Crawl.OnError.Parse
	}
	if override.Crawl.OnError.IO != "" {
		base.Crawl.OnError.IO = override.Crawl.OnError.IO
	}

	if override.Layout.Name != "" {
		base.Layout.Name = override.Layout.Name
	}
	base.Layout.Selectors = mergeSelectors(base.Layout.Selectors, override.Layout.Selectors)

	if override.Output.Papers != "" {
		base.Output.Papers = override.Output.Papers
	}
	if override.Output.Dump != "" {
		base.Output.Dump = override.Output.Dump
	}
	if override.Output.DumpURL != "" {
		base.Output.DumpURL = override.Output.DumpURL
	}

	if override.Checkpoint.Enabled != nil {
		base.Checkpoint.Enabled = *override.Checkpoint.Enabled
	}
	if override.Checkpoint.Path != "" {
		base.Checkpoint.Path = override.Checkpoint.Path
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func mergeSelectors(base, override SelectorsConfig) SelectorsConfig {
	if override.Item != "" {
		base.Item = override.Item
	}
	if override.Title != "" {
		base.Title = override.Title
	}
	if override.Abstract != "" {
		base.Abstract = override.Abstract
	}
	if override.Link != "" {
		base.Link = override.Link
	}
	return base
}

// Default returns the settings used when no file or environment overrides exist.
func Default() Config {
	return Config{
		Crawl: CrawlConfig{
			BaseURL:    "http://example.com/journal",
			StartYear:  2021,
			EndYear:    2022,
			UserAgent:  DefaultUserAgent,
			Delay:      time.Second,
			PauseAfter: PauseAfterRecord,
			MaxRetries: 2,
			OnError: FailurePolicy{
				Network: ActionAbort,
				Parse:   ActionSkip,
				IO:      ActionAbort,
			},
		},
		Layout: LayoutConfig{Name: "generic"},
		Output: OutputConfig{
			Papers:  "papers.txt",
			Dump:    "output.html",
			DumpURL: DefaultDumpURL,
		},
		Checkpoint: CheckpointConfig{
			Enabled: false,
			Path:    DefaultCheckpointPath(),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultCheckpointPath places the checkpoint database under the XDG data home.
func DefaultCheckpointPath() string {
	return filepath.Join(xdg.DataHome, appName, "checkpoints.db")
}

func validAction(action string) bool {
	switch action {
	case ActionAbort, ActionSkip, ActionRetry:
		return true
	default:
		return false
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
