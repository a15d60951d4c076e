package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/dmitrijs2005/studenthub/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of every service
//	-d string   data directory
//	-s string   local store backend: sqlite, diskv or memory
//	-i int      online check interval in seconds
//	-t int      request timeout in seconds
//	-l string   log level
//
// Only these flags are looked at, so other components can own the rest of
// os.Args.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-i", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	serviceURL := fs.String("a", "", "base URL of the StudentHub services")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "local store backend (sqlite, diskv, memory)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *serviceURL != "" {
		cfg.SetServiceURL(*serviceURL)
	}
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second

	switch cfg.StoreBackend {
	case BackendSQLite, BackendDiskv, BackendMemory:
	default:
		panic(fmt.Errorf("unknown store backend %q", cfg.StoreBackend))
	}

	if dir, err := homedir.Expand(cfg.DataDir); err == nil {
		cfg.DataDir = dir
	}
}
