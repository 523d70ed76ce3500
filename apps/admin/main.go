package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/hocdan/guitarschool/core"
	"github.com/hocdan/guitarschool/core/exam"
	"github.com/hocdan/guitarschool/core/schedule"
	logsvc "github.com/hocdan/guitarschool/services/logger"
	"github.com/hocdan/guitarschool/storage/database"
	sqlxrepos "github.com/hocdan/guitarschool/storage/database/sqlx"
	mongorepos "github.com/hocdan/guitarschool/storage/mongodb"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	rollbar := logsvc.NewRollbarLogger(stdLogger, conf)
	defer rollbar.Close()
	logger = rollbar

	ctx := context.Background()

	// set up DB
	db, err := database.Open(ctx, conf)
	errAndDie(err)
	defer db.Close()

	classRepo := sqlxrepos.NewClassRepository(db)
	if conf.Documents.URI != "" {
		client, docs, err := mongorepos.Open(ctx, conf)
		errAndDie(err)
		defer func() { _ = client.Disconnect(context.Background()) }()
		classRepo = mongorepos.NewClassRepository(docs)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		conf:     conf,
		migrator: sqlMigrator{db: db.DB},
		classSvc: schedule.NewService(classRepo, validate, logger),
		examSvc:  exam.NewService(sqlxrepos.NewExamRepository(db), validate, logger),
		in:       os.Stdin,
		out:      os.Stdout,
	}
	if err = cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal("setup failed", err)
	}
}
