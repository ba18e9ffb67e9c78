package config

import (
	"fmt"
	"strings"
	"time"

	"issue-fetcher/internal/issue"
)

type Config struct {
	Rod           RodConfig           `yaml:"rod"`
	HTTP          HttpConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
	Storage       StorageConfig       `yaml:"storage"`
	Publishers    PublishersConfig    `yaml:"publishers"`
}

type RodConfig struct {
	Bin            string `yaml:"bin"`
	Headless       bool   `yaml:"headless"`
	Leakless       bool   `yaml:"leakless"`
	PageTimeoutS   int    `yaml:"page_timeout_s"`
	PollIntervalMS int    `yaml:"poll_interval_ms"`
	DiagnosticsDir string `yaml:"diagnostics_dir"`
}

type HttpConfig struct {
	UserAgent      string `yaml:"user_agent"`
	TotalTimeoutS  int    `yaml:"total_timeout_s"`
	ChunkSizeBytes int    `yaml:"chunk_size_bytes"`
}

type ObservabilityConfig struct {
	LogPath    string `yaml:"log_path"`
	LogLevel   string `yaml:"log_level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

// Enabled reports whether a download ledger is configured.
func (s StorageConfig) Enabled() bool {
	return s.DSN != ""
}

type PublishersConfig struct {
	Freitag PublisherConfig `yaml:"freitag"`
	Spiegel PublisherConfig `yaml:"spiegel"`
	Zeit    PublisherConfig `yaml:"zeit"`
}

// Get returns the configuration of the publisher with the given id.
func (p *PublishersConfig) Get(id string) (*PublisherConfig, bool) {
	switch id {
	case "freitag":
		return &p.Freitag, true
	case "spiegel":
		return &p.Spiegel, true
	case "zeit":
		return &p.Zeit, true
	}
	return nil, false
}

type PublisherConfig struct {
	LoginURL      string    `yaml:"login_url"`
	LogoutURL     string    `yaml:"logout_url"`
	BaseURL       string    `yaml:"base_url"`
	SuccessURL    string    `yaml:"success_url"`
	LoginWaitS    int       `yaml:"login_wait_s"`
	ElementWaitMS int       `yaml:"element_wait_ms"`
	WeekOffset    int       `yaml:"week_offset"`
	CutoffWeekday string    `yaml:"cutoff_weekday"`
	Formats       []string  `yaml:"formats"`
	Selectors     Selectors `yaml:"selectors"`
}

// Validation
func (c *Config) Validate() error {
	if c.Rod.PageTimeoutS <= 0 {
		return fmt.Errorf("rod.page_timeout_s must be > 0")
	}
	if c.Rod.PollIntervalMS <= 0 {
		return fmt.Errorf("rod.poll_interval_ms must be > 0")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.TotalTimeoutS <= 0 {
		return fmt.Errorf("http.total_timeout_s must be > 0")
	}
	if c.HTTP.ChunkSizeBytes <= 0 {
		return fmt.Errorf("http.chunk_size_bytes must be > 0")
	}
	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("observability.log_level must be one of debug, info, warn, error")
	}
	if c.Observability.LogPath != "" && c.Observability.MaxSizeMB <= 0 {
		return fmt.Errorf("observability.max_size_mb must be > 0 when log_path is set")
	}
	if c.Storage.Driver != "" && c.Storage.Driver != "mssql" {
		return fmt.Errorf("storage.driver must be 'mssql' or empty")
	}
	if c.Storage.Enabled() && c.Storage.CommandTimeoutMS <= 0 {
		return fmt.Errorf("storage.command_timeout_ms must be > 0")
	}
	for _, id := range []string{"freitag", "spiegel", "zeit"} {
		pc, _ := c.Publishers.Get(id)
		if err := pc.validate(); err != nil {
			return fmt.Errorf("publishers.%s.%w", id, err)
		}
	}
	return nil
}

func (p *PublisherConfig) validate() error {
	if p.LoginURL == "" {
		return fmt.Errorf("login_url is required")
	}
	if p.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if p.LoginWaitS <= 0 {
		return fmt.Errorf("login_wait_s must be > 0")
	}
	if p.ElementWaitMS <= 0 {
		return fmt.Errorf("element_wait_ms must be > 0")
	}
	if len(p.Formats) == 0 {
		return fmt.Errorf("formats must not be empty")
	}
	if _, err := p.Rule(); err != nil {
		return fmt.Errorf("cutoff_weekday: %w", err)
	}
	return validateSelectors(&p.Selectors)
}

// Rule returns the publisher's date-to-issue rule.
func (p *PublisherConfig) Rule() (issue.Rule, error) {
	return issue.NewRule(p.WeekOffset, p.CutoffWeekday)
}

// Getters
func (p *PublisherConfig) GetLoginWait() time.Duration {
	return time.Duration(p.LoginWaitS) * time.Second
}

func (p *PublisherConfig) GetElementWait() time.Duration {
	return time.Duration(p.ElementWaitMS) * time.Millisecond
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodPollInterval() time.Duration {
	return time.Duration(c.Rod.PollIntervalMS) * time.Millisecond
}

func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutS) * time.Second
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}
