package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/admissions"
	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/events"
	"github.com/trezcool/academia/core/feedback"
	"github.com/trezcool/academia/core/jobs"
	"github.com/trezcool/academia/core/marketing"
	"github.com/trezcool/academia/core/monitoring"
	"github.com/trezcool/academia/core/notify"
	"github.com/trezcool/academia/core/user"
)

const healthTimeout = 2 * time.Second

type (
	// Pinger reports whether the database is reachable.
	Pinger interface {
		PingContext(ctx context.Context) error
	}

	ServerDeps struct {
		Conf           *core.Config
		DB             Pinger
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
		// DownloadsDir, when set, is served under /downloads.
		DownloadsDir string

		UserSvc       user.Service
		AuthzSvc      authz.Service
		AdmissionsSvc admissions.Service
		EventsSvc     events.Service
		FeedbackSvc   feedback.Service
		MonitoringSvc monitoring.Service
		JobsSvc       jobs.Service
		MarketingSvc  marketing.Service
		NotifySvc     notify.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(metricsMiddleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/health", s.health)
	if s.deps.DownloadsDir != "" {
		s.app.Static("/downloads", s.deps.DownloadsDir)
	}

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerAuthAPI(v1, jwt, s.deps)
	registerAdmissionsAPI(v1, jwt, s.deps)
	registerEventsAPI(v1, jwt, s.deps)
	registerFeedbackAPI(v1, jwt, s.deps)
	registerMonitoringAPI(v1, jwt, s.deps)
	registerJobsAPI(v1, jwt, s.deps)
	registerMarketingAPI(v1, jwt, s.deps)
	registerNotifyAPI(v1, jwt, s.deps)
}

// Start listens in the background; failures are reported through Errors.
func (s *Server) Start() {
	go func() {
		if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
			s.errs <- err
		}
	}()
}

func (s *Server) Errors() <-chan error {
	return s.errs
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}

// health fails with a shutdown error when the database is gone, so the process restarts.
func (s *Server) health(ctx echo.Context) error {
	if s.deps.DB != nil {
		c, cancel := context.WithTimeout(ctx.Request().Context(), healthTimeout)
		defer cancel()
		if err := s.deps.DB.PingContext(c); err != nil {
			return errors.Wrap(core.NewShutdownError("database unreachable"), err.Error())
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
