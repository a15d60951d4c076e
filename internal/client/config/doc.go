// Package config loads runtime configuration for the StudentHub CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see parseFile) selected via -c or -config, or the
//     STUDENTHUB_CONFIG environment variable. ".toml" files are TOML, all
//     others JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of every service
//	-d string   data directory (default ~/.studenthub)
//	-s string   local store backend: sqlite, diskv or memory
//	-i int      online status check interval (seconds)
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # File schema
//
//	{
//	  "service_url": "http://127.0.0.1:5000",
//	  "feed_url": "http://feed.internal:5006",
//	  "data_dir": "~/.studenthub",
//	  "store_backend": "sqlite",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "log_level": "info"
//	}
//
// service_url sets every service at once; the per-service keys (auth_url,
// profile_url, expense_url, planner_url, journal_url, feed_url) override it.
package config
