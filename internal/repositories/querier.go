package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "loan-broker/pkg/errors"
)

// Querier - общее для *pgxpool.Pool и pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"

	pgInvalidTextRepresentation = "22P02"
	pgNumericValueOutOfRange    = "22003"
	pgInvalidDatetimeFormat     = "22007"
	pgDatetimeFieldOverflow     = "22008"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// withScope добавляет предикат видимости. nil - без ограничений (внутренние вызовы).
func withScope(b sq.SelectBuilder, scope sq.Sqlizer) sq.SelectBuilder {
	if scope == nil {
		return b
	}
	return b.Where(scope)
}

// mapDeleteError: удаление записи, на которую ссылаются другие строки, - ErrConflict.
func mapDeleteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return apperrors.ErrConflict
	}
	return err
}

// mapWriteError: ссылка на несуществующую запись при вставке - ошибка валидации.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgForeignKeyViolation:
		return apperrors.NewFieldError(pgErr.ConstraintName, "ссылка на несуществующую запись")
	case pgUniqueViolation:
		return apperrors.ErrConflict
	}
	return err
}

// mapReadError: значение фильтра, которое база не смогла привести к типу колонки, - ошибка валидации.
func mapReadError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgInvalidTextRepresentation, pgNumericValueOutOfRange, pgInvalidDatetimeFormat, pgDatetimeFieldOverflow:
		return fmt.Errorf("%w: некорректное значение фильтра: %s", apperrors.ErrValidation, pgErr.Message)
	}
	return err
}
