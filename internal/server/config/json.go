package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/studenthub/internal/flagx"
	"github.com/dmitrijs2005/studenthub/internal/timex"
)

// JsonConfig is the DTO read from the JSON config file. Durations use
// timex.Duration, so both "1h" and integer nanoseconds are accepted.
// Empty fields leave the current value untouched.
type JsonConfig struct {
	Address            string         `json:"address"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	ResetTokenValidity timex.Duration `json:"reset_token_validity"`
	FrontendURL        string         `json:"frontend_url"`
	MailProvider       string         `json:"mail_provider"`
	SendgridAPIKey     string         `json:"sendgrid_api_key"`
	MailFrom           string         `json:"mail_from"`
	LogLevel           string         `json:"log_level"`
	LogFormat          string         `json:"log_format"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flag or the STUDENTHUB_SERVER_CONFIG variable. Without either
// nothing is loaded. Read or decode errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFilePath(EnvConfigFile)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&config.Address, c.Address)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	set(&config.FrontendURL, c.FrontendURL)
	set(&config.MailProvider, c.MailProvider)
	set(&config.SendgridAPIKey, c.SendgridAPIKey)
	set(&config.MailFrom, c.MailFrom)
	set(&config.LogLevel, c.LogLevel)
	set(&config.LogFormat, c.LogFormat)

	if c.ResetTokenValidity.Duration > 0 {
		config.ResetTokenValidity = time.Duration(c.ResetTokenValidity.Duration)
	}
}
