package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"

	"github.com/dmitrijs2005/studenthub/internal/flagx"
	"github.com/dmitrijs2005/studenthub/internal/timex"
)

// FileConfig is a DTO used exclusively for file decoding. Intervals use
// timex.Duration so they can be written as "3s" or as integer nanoseconds.
// Empty fields leave the current value untouched.
type FileConfig struct {
	ServiceURL string `json:"service_url" toml:"service_url"`
	AuthURL    string `json:"auth_url" toml:"auth_url"`
	ProfileURL string `json:"profile_url" toml:"profile_url"`
	ExpenseURL string `json:"expense_url" toml:"expense_url"`
	PlannerURL string `json:"planner_url" toml:"planner_url"`
	JournalURL string `json:"journal_url" toml:"journal_url"`
	FeedURL    string `json:"feed_url" toml:"feed_url"`

	DataDir      string `json:"data_dir" toml:"data_dir"`
	StoreBackend string `json:"store_backend" toml:"store_backend"`

	OnlineCheckInterval timex.Duration `json:"online_check_interval" toml:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout" toml:"request_timeout"`

	LogLevel  string `json:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" toml:"log_format"`
}

// parseFile overlays Config with values from the file named by -c/-config or
// the STUDENTHUB_CONFIG variable. Files ending in .toml are decoded as TOML,
// anything else as JSON. Read or decode errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFilePath(EnvConfigFile)
	if path == "" {
		return
	}
	path, err := homedir.Expand(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			panic(err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			panic(err)
		}
		if err := json.Unmarshal(data, &fc); err != nil {
			panic(err)
		}
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.ServiceURL != "" {
		cfg.SetServiceURL(fc.ServiceURL)
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.AuthURL, fc.AuthURL)
	set(&cfg.ProfileURL, fc.ProfileURL)
	set(&cfg.ExpenseURL, fc.ExpenseURL)
	set(&cfg.PlannerURL, fc.PlannerURL)
	set(&cfg.JournalURL, fc.JournalURL)
	set(&cfg.FeedURL, fc.FeedURL)
	set(&cfg.DataDir, fc.DataDir)
	set(&cfg.StoreBackend, fc.StoreBackend)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFormat, fc.LogFormat)

	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
}
