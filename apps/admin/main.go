package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/admissions"
	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/events"
	"github.com/trezcool/academia/core/feedback"
	"github.com/trezcool/academia/core/monitoring"
	"github.com/trezcool/academia/core/user"
	emailsvc "github.com/trezcool/academia/services/email"
	eventbritesvc "github.com/trezcool/academia/services/eventbrite"
	"github.com/trezcool/academia/services/httpcheck"
	logsvc "github.com/trezcool/academia/services/logger"
	storagesvc "github.com/trezcool/academia/services/storage"
	tasksvc "github.com/trezcool/academia/services/tasks"
	"github.com/trezcool/academia/storage/database"
	sqlxrepos "github.com/trezcool/academia/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	errAndDie := func(msg string, err error) {
		if err != nil {
			logger.Fatal(fmt.Sprintf("%s: %v", msg, err), err)
		}
	}

	// set up DB
	db, err := database.Open(conf)
	errAndDie("opening database", err)
	defer db.Close()

	ctx := context.Background()

	// tasks run inline so commands return once their work is done
	tasks := tasksvc.NewSyncQueue(ctx, logger)

	files, closeFiles, err := storagesvc.Open(ctx, conf)
	errAndDie("setting up file storage", err)
	defer closeFiles()

	mailSvc := emailsvc.NewConsoleService(conf, logger)
	core.ParseEmailTemplates(conf, logger)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	admSvc := admissions.NewService(sqlxrepos.NewAdmissionsRepository(db), usrSvc)
	evSvc := events.NewService(sqlxrepos.NewEventsRepository(db), admSvc, eventbritesvc.NewClient(conf), tasks, logger)
	fbSvc := feedback.NewService(sqlxrepos.NewFeedbackRepository(db), usrSvc, admSvc, mailSvc, tasks, logger, conf)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)

	// start CLI
	cli := commandLine{
		db:       db,
		validate: validate,
		usrSvc:   usrSvc,
		authzSvc: authz.NewService(sqlxrepos.NewAuthzRepository(db), usrSvc),
		evSvc:    evSvc,
		monSvc: monitoring.NewService(
			sqlxrepos.NewMonitoringRepository(db),
			httpcheck.New(10*time.Second),
			files,
			monitoring.Sources(evSvc, fbSvc),
			tasks,
			logger,
		),
		out: os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s\n", err), err)
		}
		os.Exit(1)
	}
}
