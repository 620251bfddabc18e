package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	echoapi "github.com/trezcool/dossiers/apps/api/echo"
	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/document"
	"github.com/trezcool/dossiers/core/student"
	activitysvc "github.com/trezcool/dossiers/services/activity"
	emailsvc "github.com/trezcool/dossiers/services/email"
	"github.com/trezcool/dossiers/services/filestore"
	logsvc "github.com/trezcool/dossiers/services/logger"
	"github.com/trezcool/dossiers/storage/database"
	sqlxrepos "github.com/trezcool/dossiers/storage/database/sqlx"
)

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
	sqlDB, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = sqlDB.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	db := sqlxrepos.NewDB(sqlDB)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger, os.Stdout)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var files document.FileStore
	if conf.Storage.Backend == "remote" {
		files = filestore.NewRemoteStore(conf.Storage, conf.Activity.Timeout)
	} else {
		files = filestore.NewLocalStore(afero.NewOsFs(), conf.Storage)
	}

	var activities document.ActivityLogger
	if conf.Activity.Backend == "remote" {
		activities = activitysvc.NewRemoteService(conf.Activity)
	} else {
		activities = activitysvc.NewLoggerService(logger)
	}

	stdSvc := student.NewService(sqlxrepos.NewStudentRepository(db))
	docSvc := document.NewService(
		sqlxrepos.NewDocumentRepository(db),
		stdSvc,
		files,
		activities,
		mailSvc,
		logger,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	document.RegisterValidators(validate, translator)

	core.ParseEmailTemplates(logger, conf.Debug || conf.TestMode)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			StudentSvc:  stdSvc,
			DocumentSvc: docSvc,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

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
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(context.Background(), db, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
