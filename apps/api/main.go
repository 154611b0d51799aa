package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	echoapi "github.com/trezcool/academia/apps/api/echo"
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
	acsvc "github.com/trezcool/academia/services/activecampaign"
	emailsvc "github.com/trezcool/academia/services/email"
	eventbritesvc "github.com/trezcool/academia/services/eventbrite"
	"github.com/trezcool/academia/services/httpcheck"
	logsvc "github.com/trezcool/academia/services/logger"
	storagesvc "github.com/trezcool/academia/services/storage"
	tasksvc "github.com/trezcool/academia/services/tasks"
	"github.com/trezcool/academia/storage/database"
	sqlxrepos "github.com/trezcool/academia/storage/database/sqlx"
)

// TODO:
// - CSRF for the cookie based admin screens
// - APM/Tracing
func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up background tasks
	tasks := tasksvc.NewRunner(conf.Tasks, logger)
	tasks.Start()

	// set up outbound services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	files, closeFiles, err := storagesvc.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
	}
	defer func() {
		if err = closeFiles(); err != nil {
			logger.Error("closing file storage", err)
		}
	}()

	// set up domain services
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	authzSvc := authz.NewService(sqlxrepos.NewAuthzRepository(db), usrSvc)
	admSvc := admissions.NewService(sqlxrepos.NewAdmissionsRepository(db), usrSvc)
	evSvc := events.NewService(sqlxrepos.NewEventsRepository(db), admSvc, eventbritesvc.NewClient(conf), tasks, logger)
	fbSvc := feedback.NewService(sqlxrepos.NewFeedbackRepository(db), usrSvc, admSvc, mailSvc, tasks, logger, conf)
	monSvc := monitoring.NewService(
		sqlxrepos.NewMonitoringRepository(db),
		httpcheck.New(10*time.Second),
		files,
		monitoring.Sources(evSvc, fbSvc),
		tasks,
		logger,
	)
	jobSvc := jobs.NewService(sqlxrepos.NewJobsRepository(db))
	mktSvc := marketing.NewService(sqlxrepos.NewMarketingRepository(db), admSvc, acsvc.NewClient(conf), tasks, logger)
	notifySvc := notify.NewService(sqlxrepos.NewNotifyRepository(db), usrSvc, mailSvc, tasks, logger, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus metrics of the API and the background tasks.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	http.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	deps := echoapi.ServerDeps{
		Conf:          conf,
		DB:            db,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		UserSvc:       usrSvc,
		AuthzSvc:      authzSvc,
		AdmissionsSvc: admSvc,
		EventsSvc:     evSvc,
		FeedbackSvc:   fbSvc,
		MonitoringSvc: monSvc,
		JobsSvc:       jobSvc,
		MarketingSvc:  mktSvc,
		NotifySvc:     notifySvc,
	}
	if disk, ok := files.(*storagesvc.Disk); ok {
		deps.DownloadsDir = disk.Dir()
	}
	server := echoapi.NewServer(deps)

	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}

		// let the running tasks finish
		if err = tasks.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop tasks gracefully: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db, "up"); err != nil {
		return nil, err
	}
	return db, nil
}
