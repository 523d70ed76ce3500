package main

import (
	"context"
	"database/sql"

	"github.com/hocdan/guitarschool/storage/database"
)

type migrator interface {
	Migrate(ctx context.Context, command string, args ...string) error
}

var gooseRunFunc = database.RunMigrations // mockable

type sqlMigrator struct {
	db *sql.DB
}

func (m sqlMigrator) Migrate(ctx context.Context, command string, args ...string) error {
	return gooseRunFunc(ctx, m.db, command, args...)
}

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	return cli.migrator.Migrate(ctx, args[0], args[1:]...)
}
