// Package migrations встроенные SQL миграции схемы слотов и бронирований
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var files embed.FS

// Logger логгер, в который goose пишет ход миграций
type Logger interface {
	Info(format string, v ...interface{})
	Fatal(format string, v ...interface{})
}

type gooseLogger struct {
	log Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) { l.log.Info("goose: "+format, v...) }
func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.log.Fatal("goose: "+format, v...) }

// Up применяет все непримененные миграции
func Up(ctx context.Context, db *sql.DB, log Logger) error {
	goose.SetBaseFS(files)
	goose.SetLogger(gooseLogger{log: log})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrations: set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: apply: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("migrations: get version: %w", err)
	}
	log.Info("Database schema is at version %d", version)

	return nil
}
