package config

import (
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/dmitrijs2005/studenthub/internal/client/client"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

// EnvConfigFile names the environment variable consulted when no -c/-config
// flag is given.
const EnvConfigFile = "STUDENTHUB_CONFIG"

const (
	BackendSQLite = "sqlite"
	BackendDiskv  = "diskv"
	BackendMemory = "memory"
)

const defaultServiceURL = "http://127.0.0.1:5000"

// Config holds runtime settings for the StudentHub CLI.
//
// Each service URL may point at a separate deployment; by default they all
// point at one server.
type Config struct {
	AuthURL    string
	ProfileURL string
	ExpenseURL string
	PlannerURL string // tasks and events
	JournalURL string // moods and diary
	FeedURL    string

	DataDir      string
	StoreBackend string

	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.AuthURL = defaultServiceURL
	c.ProfileURL = defaultServiceURL
	c.ExpenseURL = defaultServiceURL
	c.PlannerURL = defaultServiceURL
	c.JournalURL = defaultServiceURL
	c.FeedURL = defaultServiceURL

	c.DataDir = defaultDataDir()
	c.StoreBackend = BackendSQLite

	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second

	c.LogLevel = "warn"
	c.LogFormat = "text"
}

func defaultDataDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".studenthub"
	}
	return filepath.Join(home, ".studenthub")
}

// SetServiceURL points every service at u.
func (c *Config) SetServiceURL(u string) {
	c.AuthURL, c.ProfileURL, c.ExpenseURL = u, u, u
	c.PlannerURL, c.JournalURL, c.FeedURL = u, u, u
}

// Endpoints maps the configured URLs onto the collections they serve.
func (c *Config) Endpoints() client.Endpoints {
	return client.Endpoints{
		Auth:    c.AuthURL,
		Profile: c.ProfileURL,
		Collections: map[models.Collection]string{
			models.Expenses: c.ExpenseURL,
			models.Tasks:    c.PlannerURL,
			models.Events:   c.PlannerURL,
			models.Moods:    c.JournalURL,
			models.Diary:    c.JournalURL,
			models.Feed:     c.FeedURL,
		},
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
