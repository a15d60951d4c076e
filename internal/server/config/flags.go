package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/studenthub/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-d string   PostgreSQL DSN
//	-s string   reset token HMAC secret key
//	-t int      reset token validity, minutes
//	-f string   frontend base URL used in reset links
//	-m string   mail provider: console or sendgrid
//	-k string   sendgrid API key
//	-l string   log level
//
// Only the flags above are looked at, so other components can own the rest
// of os.Args.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-f", "-m", "-k", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Address, "a", config.Address, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "Postgres DSN, or \"memory\" for in-memory storage")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	resetTokenValidity := fs.Int("t", int(config.ResetTokenValidity.Minutes()), "reset_token_validity (in minutes)")

	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend base URL")
	fs.StringVar(&config.MailProvider, "m", config.MailProvider, "mail provider (console, sendgrid)")
	fs.StringVar(&config.SendgridAPIKey, "k", config.SendgridAPIKey, "sendgrid API key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ResetTokenValidity = time.Duration(*resetTokenValidity) * time.Minute

	switch config.MailProvider {
	case MailConsole, MailSendgrid:
	default:
		panic(fmt.Errorf("unknown mail provider %q", config.MailProvider))
	}
}
