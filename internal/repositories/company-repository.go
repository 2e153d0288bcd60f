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

var companyColumns = []string{"c.id", "c.name", "c.kind", "c.user_id", "c.created_at"}

var companyMap = map[string]string{
	"id":      "c.id",
	"name":    "c.name",
	"kind":    "c.kind",
	"created": "c.created_at",
}

type CompanyRepositoryInterface interface {
	GetCompanies(ctx context.Context, scope sq.Sqlizer, filter types.Filter) ([]entities.Company, uint64, error)
	FindCompany(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.Company, error)
	FindByUserID(ctx context.Context, userID uint64) (*entities.Company, error)
}

type CompanyRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCompanyRepository(storage *pgxpool.Pool, logger *zap.Logger) CompanyRepositoryInterface {
	return &CompanyRepository{storage: storage, logger: logger}
}

func scanCompany(row pgx.Row) (*entities.Company, error) {
	var c entities.Company
	err := row.Scan(&c.ID, &c.Name, &c.Kind, &c.UserID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования company: %w", err)
	}
	return &c, nil
}

func (r *CompanyRepository) GetCompanies(ctx context.Context, scope sq.Sqlizer, filter types.Filter) ([]entities.Company, uint64, error) {
	countBuilder := withScope(psql.Select("COUNT(c.id)").From("companies AS c"), scope)
	countBuilder = db.ApplySearch(countBuilder, filter.Search, "c.name")
	countBuilder = db.ApplyFilters(countBuilder, filter, companyMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета компаний: %w", mapReadError(err))
	}
	if total == 0 {
		return []entities.Company{}, 0, nil
	}

	builder := withScope(psql.Select(companyColumns...).From("companies AS c"), scope)
	builder = db.ApplySearch(builder, filter.Search, "c.name")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("c.name ASC", "c.id ASC")
	}
	builder = db.ApplyListParams(builder, filter, companyMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения компаний: %w", mapReadError(err))
	}
	defer rows.Close()

	companies := make([]entities.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, *c)
	}
	return companies, total, rows.Err()
}

func (r *CompanyRepository) findOne(ctx context.Context, querier Querier, scope sq.Sqlizer, where sq.Eq) (*entities.Company, error) {
	builder := withScope(psql.Select(companyColumns...).From("companies AS c").Where(where), scope)
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanCompany(querier.QueryRow(ctx, query, args...))
}

func (r *CompanyRepository) FindCompany(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.Company, error) {
	return r.findOne(ctx, r.storage, scope, sq.Eq{"c.id": id})
}

func (r *CompanyRepository) FindByUserID(ctx context.Context, userID uint64) (*entities.Company, error) {
	return r.findOne(ctx, r.storage, nil, sq.Eq{"c.user_id": userID})
}
