// Package httpapi exposes the StudentHub services over HTTP with echo.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server. The three services are required.
type Options struct {
	Address        string
	BodyLimit      string
	DisableReqLogs bool
	Users          UserService
	Records        RecordService
	Feed           FeedService
	Logger         logging.Logger
}

type Server struct {
	opts *Options
	app  *echo.Echo
	log  logging.Logger
}

func NewServer(opts *Options) *Server {
	if opts.BodyLimit == "" {
		opts.BodyLimit = "50M"
	}
	s := &Server{
		opts: opts,
		app:  echo.New(),
		log:  opts.Logger.With("module", "http_server"),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(requestLogger(s.log))
	}
	s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.log.Error(c.Request().Context(), "panic recovered", "err", err, "stack", string(stack))
			return err
		},
	}))
	s.app.Use(middleware.CORS())
	s.app.Use(middleware.BodyLimit(s.opts.BodyLimit))

	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.log)

	s.app.GET(common.HealthPath, health)

	api := s.app.Group("/api")
	registerAuthAPI(api, s.opts.Users)
	registerProfileAPI(api, s.opts.Users)
	registerRecordAPI(api, s.opts.Records)
	registerFeedAPI(api, s.opts.Feed)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "Starting HTTP server", "address", s.opts.Address)
		errCh <- s.app.Start(s.opts.Address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.app.Shutdown(shutdownCtx)
}

// ServeHTTP lets tests drive the server without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "studenthub"})
}

func requestLogger(log logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				args = append(args, "err", v.Error)
			}
			log.Info(c.Request().Context(), "request", args...)
			return nil
		},
	})
}
