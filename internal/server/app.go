// Package server wires the StudentHub collection services: storage, mail,
// business services and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/studenthub/internal/logging"
	"github.com/dmitrijs2005/studenthub/internal/server/config"
	"github.com/dmitrijs2005/studenthub/internal/server/httpapi"
	"github.com/dmitrijs2005/studenthub/internal/server/mail"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/studenthub/internal/server/services"
)

// DSNMemory selects the in-memory repositories instead of Postgres.
const DSNMemory = "memory"

const appName = "StudentHub"

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
	close  func() error
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	rm, closeFn, err := openRepositories(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	mailer := newMailer(c, logger)

	srv := httpapi.NewServer(&httpapi.Options{
		Address: c.Address,
		Users:   services.NewUserService(rm, mailer, c, logger),
		Records: services.NewRecordService(rm, logger),
		Feed:    services.NewFeedService(rm, logger),
		Logger:  logger,
	})

	return &App{config: c, logger: logger, server: srv, close: closeFn}, nil
}

// openRepositories connects to Postgres and applies the migrations, or builds
// the in-memory repositories when dsn is DSNMemory.
func openRepositories(ctx context.Context, dsn string) (repomanager.RepositoryManager, func() error, error) {
	if dsn == DSNMemory {
		return repomanager.NewInMemoryRepositoryManager(), func() error { return nil }, nil
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager(db)
	if err := rm.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return rm, db.Close, nil
}

func newMailer(c *config.Config, logger logging.Logger) mail.Mailer {
	if c.MailProvider == config.MailSendgrid {
		return mail.NewSendgridMailer(c.SendgridAPIKey, appName, c.MailFrom)
	}
	return mail.NewConsoleMailer(logger)
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or the server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.close(); err != nil {
		app.logger.Error(ctx, "error closing database", "err", err)
	}
	app.logger.Info(ctx, "App stopped")
}
