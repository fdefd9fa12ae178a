package repository

import (
	"context"
	"errors"
	"fmt"

	"teto/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is satisfied by both *pgxpool.Pool and pgx.Tx
type Queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapPgError translates constraint violations into domain errors
func mapPgError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", msg, entities.ErrUniqueViolation)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: referenced row missing (%s): %w", msg, pgErr.ConstraintName, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
