package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/studenthub/internal/client/client"
	"github.com/dmitrijs2005/studenthub/internal/client/config"
	"github.com/dmitrijs2005/studenthub/internal/client/keyedstore"
	"github.com/dmitrijs2005/studenthub/internal/client/session"
	"github.com/dmitrijs2005/studenthub/internal/client/workspace"
	"github.com/dmitrijs2005/studenthub/internal/filex"
	"github.com/dmitrijs2005/studenthub/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	ws     *workspace.Workspace
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer
	close  func() error

	mu   sync.RWMutex
	mode Mode

	bg sync.WaitGroup
}

// NewApp opens the local store selected by c and builds the workspace on top
// of it and the HTTP client.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.New(os.Stderr, c.LogFormat, c.LogLevel)

	backend, closeFn, err := openBackend(ctx, c)
	if err != nil {
		log.Error(ctx, "error opening local store", "err", err)
		return nil, err
	}

	store := keyedstore.New(backend, log)
	api := client.NewHTTPClient(c.Endpoints(), c.RequestTimeout, log)
	ws := workspace.New(store, api, log)

	return newApp(c, ws, log, bufio.NewReader(os.Stdin), color.Output, closeFn), nil
}

func newApp(c *config.Config, ws *workspace.Workspace, log logging.Logger, r *bufio.Reader, out io.Writer, closeFn func() error) *App {
	return &App{config: c, ws: ws, log: log, reader: r, out: out, close: closeFn}
}

// openBackend returns the configured KeyedStore backend and a function
// releasing it.
func openBackend(ctx context.Context, c *config.Config) (keyedstore.Backend, func() error, error) {
	noop := func() error { return nil }
	if c.StoreBackend == config.BackendMemory {
		return keyedstore.NewMemoryBackend(), noop, nil
	}

	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, nil, err
	}

	switch c.StoreBackend {
	case config.BackendDiskv:
		return keyedstore.NewDiskvBackend(filepath.Join(dir, "store")), noop, nil
	case config.BackendSQLite:
		db, err := keyedstore.InitDatabase(ctx, filepath.Join(dir, "studenthub.db"))
		if err != nil {
			return nil, nil, err
		}
		return keyedstore.NewSQLiteBackend(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// setMode records the connectivity mode and reports whether it changed.
func (a *App) setMode(mode Mode) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == mode {
		return false
	}
	a.mode = mode
	return true
}

// Run restores the previous session, starts the connectivity watcher and
// blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		a.bg.Wait()
		a.ws.Close()
		if err := a.close(); err != nil {
			a.log.Error(ctx, "error closing local store", "err", err)
		}
	}()

	fmt.Fprintln(a.out, "Welcome to StudentHub CLI (type 'help' for commands)")
	if a.ws.Open(ctx) == session.Authenticated {
		u, _ := a.ws.User()
		fmt.Fprintf(a.out, "Signed in as %s\n", u.DisplayName())
	}
	a.checkOnline(ctx)

	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.ws.User()
	return ok
}

// getStatus renders the prompt prefix: the signed in user and the mode.
func (a *App) getStatus() string {
	s := ""
	if u, ok := a.ws.User(); ok {
		s = u.DisplayName() + " "
	}
	switch a.Mode() {
	case ModeOnline:
		s += color.GreenString(string(ModeOnline))
	case ModeOffline:
		s += color.YellowString(string(ModeOffline))
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// checkOnline pings the services once and updates the mode. Coming back
// online refreshes the caches in the background.
func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.ws.Ping(pctx)
	cancel()

	if err != nil {
		if a.setMode(ModeOffline) {
			a.log.Info(ctx, "switched to offline mode", "err", err)
		}
		return
	}
	if a.setMode(ModeOnline) {
		a.log.Info(ctx, "switched to online mode")
		if a.isLoggedIn() {
			a.bg.Add(1)
			go func() {
				defer a.bg.Done()
				if err := a.ws.Sync(ctx); err != nil && !errors.Is(err, context.Canceled) {
					a.log.Warn(ctx, "sync after reconnect incomplete", "err", err)
				}
			}()
		}
	}
}

// StartOnlineStatusWatcher pings the services every interval until ctx is
// done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
