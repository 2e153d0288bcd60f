package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"loan-broker/internal/entities"
	db "loan-broker/internal/infrastructure/bd"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/types"
)

var borrowerColumns = []string{
	"b.id", "b.last_name", "b.first_name", "b.middle_name", "b.birth_date",
	"b.phone_number", "b.passport_number", "b.score", "b.company_id",
	"b.created_at", "b.modified_at",
}

// Колонки анкеты участвуют в поиске и по анкетам, и по заявкам.
var borrowerSearchColumns = []string{
	"b.last_name", "b.first_name", "b.middle_name", "b.phone_number", "b.passport_number",
}

var borrowerMap = map[string]string{
	"id":       "b.id",
	"score":    "b.score",
	"company":  "b.company_id",
	"created":  "b.created_at",
	"modified": "b.modified_at",
}

type BorrowerRepositoryInterface interface {
	GetBorrowers(ctx context.Context, scope sq.Sqlizer, filter types.Filter) ([]entities.Borrower, uint64, error)
	FindBorrower(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.Borrower, error)
	CreateBorrower(ctx context.Context, borrower *entities.Borrower) (*entities.Borrower, error)
	UpdateBorrower(ctx context.Context, borrower *entities.Borrower) (*entities.Borrower, error)
	DeleteBorrower(ctx context.Context, id uint64) error
}

type BorrowerRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewBorrowerRepository(storage *pgxpool.Pool, logger *zap.Logger) BorrowerRepositoryInterface {
	return &BorrowerRepository{storage: storage, logger: logger}
}

func scanBorrower(row pgx.Row) (*entities.Borrower, error) {
	var b entities.Borrower
	err := row.Scan(
		&b.ID, &b.LastName, &b.FirstName, &b.MiddleName, &b.BirthDate,
		&b.PhoneNumber, &b.PassportNumber, &b.Score, &b.CompanyID,
		&b.CreatedAt, &b.ModifiedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования borrower: %w", err)
	}
	return &b, nil
}

func (r *BorrowerRepository) GetBorrowers(ctx context.Context, scope sq.Sqlizer, filter types.Filter) ([]entities.Borrower, uint64, error) {
	countBuilder := withScope(psql.Select("COUNT(b.id)").From("borrowers AS b"), scope)
	countBuilder = db.ApplySearch(countBuilder, filter.Search, borrowerSearchColumns...)
	countBuilder = db.ApplyFilters(countBuilder, filter, borrowerMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета анкет: %w", mapReadError(err))
	}
	if total == 0 {
		return []entities.Borrower{}, 0, nil
	}

	builder := withScope(psql.Select(borrowerColumns...).From("borrowers AS b"), scope)
	builder = db.ApplySearch(builder, filter.Search, borrowerSearchColumns...)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("b.created_at DESC", "b.id DESC")
	}
	builder = db.ApplyListParams(builder, filter, borrowerMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	r.logger.Debug("Список анкет", zap.String("query", query), zap.Any("args", args))

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения анкет: %w", mapReadError(err))
	}
	defer rows.Close()

	borrowers := make([]entities.Borrower, 0)
	for rows.Next() {
		b, err := scanBorrower(rows)
		if err != nil {
			return nil, 0, err
		}
		borrowers = append(borrowers, *b)
	}
	return borrowers, total, rows.Err()
}

func (r *BorrowerRepository) FindBorrower(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.Borrower, error) {
	builder := withScope(psql.Select(borrowerColumns...).From("borrowers AS b").Where(sq.Eq{"b.id": id}), scope)
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanBorrower(r.storage.QueryRow(ctx, query, args...))
}

func (r *BorrowerRepository) CreateBorrower(ctx context.Context, b *entities.Borrower) (*entities.Borrower, error) {
	query, args, err := psql.Insert("borrowers").
		Columns("last_name", "first_name", "middle_name", "birth_date", "phone_number", "passport_number", "score", "company_id").
		Values(b.LastName, b.FirstName, b.MiddleName, b.BirthDate, b.PhoneNumber, b.PassportNumber, b.Score, b.CompanyID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var id uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("ошибка создания анкеты: %w", mapWriteError(err))
	}
	return r.FindBorrower(ctx, nil, id)
}

func (r *BorrowerRepository) UpdateBorrower(ctx context.Context, b *entities.Borrower) (*entities.Borrower, error) {
	query, args, err := psql.Update("borrowers").
		Set("last_name", b.LastName).
		Set("first_name", b.FirstName).
		Set("middle_name", b.MiddleName).
		Set("birth_date", b.BirthDate).
		Set("phone_number", b.PhoneNumber).
		Set("passport_number", b.PassportNumber).
		Set("score", b.Score).
		Set("company_id", b.CompanyID).
		Set("modified_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	res, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления анкеты: %w", mapWriteError(err))
	}
	if res.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.FindBorrower(ctx, nil, b.ID)
}

func (r *BorrowerRepository) DeleteBorrower(ctx context.Context, id uint64) error {
	res, err := r.storage.Exec(ctx, "DELETE FROM borrowers WHERE id = $1", id)
	if err != nil {
		return mapDeleteError(err)
	}
	if res.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
