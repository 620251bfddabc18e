package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/afero"

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
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	cli := commandLine{conf: conf, out: os.Stdout}

	// set up DB
	if needsDB(os.Args) {
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		defer func() { _ = db.Close() }()

		sqlxDB := sqlxrepos.NewDB(db)
		cli.db = db
		cli.docSvc = document.NewService(
			sqlxrepos.NewDocumentRepository(sqlxDB),
			student.NewService(sqlxrepos.NewStudentRepository(sqlxDB)),
			filestore.NewLocalStore(afero.NewOsFs(), conf.Storage),
			activitysvc.NewLoggerService(logger),
			emailsvc.NewConsoleService(conf, logger, os.Stdout),
			logger,
		)
	}

	// start CLI
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s\n", err), err)
		}
		os.Exit(1)
	}
}
