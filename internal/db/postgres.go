// Package db opens the Postgres connection used by the direct-database gateway and maps
// driver errors onto the remote error taxonomy.
package db

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/platform/remote"
)

// Open opens a Postgres connection using the given DSN. Caller must call Close when done.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Classify converts a server-reported *pgconn.PgError into a *remote.RejectedError for op.
// Connection and other driver failures are returned unchanged; nil stays nil.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &remote.RejectedError{
			Op:      op,
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Details: pgErr.Detail,
		}
	}
	return err
}
