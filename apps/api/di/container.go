package di

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/dig"

	echoapi "github.com/hocdan/guitarschool/apps/api/echo"
	"github.com/hocdan/guitarschool/core"
	"github.com/hocdan/guitarschool/core/exam"
	"github.com/hocdan/guitarschool/core/schedule"
	"github.com/hocdan/guitarschool/services/jobs"
	logsvc "github.com/hocdan/guitarschool/services/logger"
	"github.com/hocdan/guitarschool/storage/database"
	sqlxrepos "github.com/hocdan/guitarschool/storage/database/sqlx"
	mongorepos "github.com/hocdan/guitarschool/storage/mongodb"
)

const setUpTimeout = time.Minute

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// DocumentStore is the optional MongoDB connection. Client is nil when classes live in the SQL database.
type DocumentStore struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func (ds DocumentStore) Close(ctx context.Context) error {
	if ds.Client == nil {
		return nil
	}
	return ds.Client.Disconnect(ctx)
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), setUpTimeout)
	defer cancel()

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	loggerParam.Logger.Info("database ready", map[string]interface{}{"name": conf.Database.Name})
	return db, nil
}

func newDocumentStore(conf *core.Config, loggerParam DBLoggerParam) (DocumentStore, error) {
	if conf.Documents.URI == "" {
		return DocumentStore{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), setUpTimeout)
	defer cancel()

	client, db, err := mongorepos.Open(ctx, conf)
	if err != nil {
		return DocumentStore{}, err
	}
	loggerParam.Logger.Info("document store ready", map[string]interface{}{"database": conf.Documents.Database})
	return DocumentStore{Client: client, DB: db}, nil
}

func newClassRepository(db *sqlx.DB, docs DocumentStore) schedule.Repository {
	if docs.DB != nil {
		return mongorepos.NewClassRepository(docs.DB)
	}
	return sqlxrepos.NewClassRepository(db)
}

func newExamRepository(db *sqlx.DB) exam.Repository {
	return sqlxrepos.NewExamRepository(db)
}

// New returns a new dependency injection dig.Container
func New(opts ...dig.Option) *dig.Container {
	c := dig.New(opts...)

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newDocumentStore))
	must(c.Provide(newClassRepository))
	must(c.Provide(newExamRepository))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(schedule.NewService))
	must(c.Provide(exam.NewService))
	must(c.Provide(jobs.NewRunner))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
