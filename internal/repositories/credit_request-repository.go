package repositories

import (
	"context"
	"database/sql"
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

// Владельцы заявки не хранятся: b.company_id и o.company_id берутся join'ом.
const creditRequestFrom = "credit_requests AS cr " +
	"JOIN borrowers AS b ON b.id = cr.borrower_id " +
	"JOIN offers AS o ON o.id = cr.offer_id"

var creditRequestColumns = append([]string{
	"cr.id", "cr.status", "cr.created_at", "cr.sent_date", "cr.borrower_id", "cr.offer_id",
	"o.company_id",
}, borrowerColumns...)

var creditRequestMap = map[string]string{
	"id":        "cr.id",
	"status":    "cr.status",
	"offer":     "cr.offer_id",
	"borrower":  "cr.borrower_id",
	"created":   "cr.created_at",
	"sent_date": "cr.sent_date",
}

type CreditRequestRepositoryInterface interface {
	GetCreditRequests(ctx context.Context, scope sq.Sqlizer, filter types.Filter) ([]entities.CreditRequest, uint64, error)
	FindCreditRequest(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.CreditRequest, error)
	// CreateCreditRequest вставляет одну строку; querier - пул или транзакция.
	CreateCreditRequest(ctx context.Context, querier Querier, cr *entities.CreditRequest) (*entities.CreditRequest, error)
	UpdateCreditRequest(ctx context.Context, cr *entities.CreditRequest) (*entities.CreditRequest, error)
	DeleteCreditRequest(ctx context.Context, id uint64) error
	// ExistingOfferIDs возвращает предложения из offerIDs, по которым у анкеты уже есть заявка.
	ExistingOfferIDs(ctx context.Context, borrowerID uint64, offerIDs []uint64) (map[uint64]bool, error)
}

type CreditRequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCreditRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) CreditRequestRepositoryInterface {
	return &CreditRequestRepository{storage: storage, logger: logger}
}

func scanCreditRequest(row pgx.Row) (*entities.CreditRequest, error) {
	var cr entities.CreditRequest
	var b entities.Borrower
	var sentDate sql.NullTime

	err := row.Scan(
		&cr.ID, &cr.Status, &cr.CreatedAt, &sentDate, &cr.BorrowerID, &cr.OfferID,
		&cr.OfferCompanyID,
		&b.ID, &b.LastName, &b.FirstName, &b.MiddleName, &b.BirthDate,
		&b.PhoneNumber, &b.PassportNumber, &b.Score, &b.CompanyID,
		&b.CreatedAt, &b.ModifiedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования credit_request: %w", err)
	}
	if sentDate.Valid {
		cr.SentDate = &sentDate.Time
	}
	cr.BorrowerCompanyID = b.CompanyID
	cr.Borrower = &b
	return &cr, nil
}

func (r *CreditRequestRepository) GetCreditRequests(ctx context.Context, scope sq.Sqlizer, filter types.Filter) ([]entities.CreditRequest, uint64, error) {
	countBuilder := withScope(psql.Select("COUNT(cr.id)").From(creditRequestFrom), scope)
	countBuilder = db.ApplySearch(countBuilder, filter.Search, borrowerSearchColumns...)
	countBuilder = db.ApplyFilters(countBuilder, filter, creditRequestMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заявок: %w", mapReadError(err))
	}
	if total == 0 {
		return []entities.CreditRequest{}, 0, nil
	}

	builder := withScope(psql.Select(creditRequestColumns...).From(creditRequestFrom), scope)
	builder = db.ApplySearch(builder, filter.Search, borrowerSearchColumns...)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("cr.created_at DESC", "cr.id DESC")
	}
	builder = db.ApplyListParams(builder, filter, creditRequestMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	r.logger.Debug("Список заявок", zap.String("query", query), zap.Any("args", args))

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения заявок: %w", mapReadError(err))
	}
	defer rows.Close()

	requests := make([]entities.CreditRequest, 0)
	for rows.Next() {
		cr, err := scanCreditRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *cr)
	}
	return requests, total, rows.Err()
}

func (r *CreditRequestRepository) findOne(ctx context.Context, querier Querier, scope sq.Sqlizer, where sq.Eq) (*entities.CreditRequest, error) {
	builder := withScope(psql.Select(creditRequestColumns...).From(creditRequestFrom).Where(where), scope)
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanCreditRequest(querier.QueryRow(ctx, query, args...))
}

func (r *CreditRequestRepository) FindCreditRequest(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.CreditRequest, error) {
	return r.findOne(ctx, r.storage, scope, sq.Eq{"cr.id": id})
}

func (r *CreditRequestRepository) CreateCreditRequest(ctx context.Context, querier Querier, cr *entities.CreditRequest) (*entities.CreditRequest, error) {
	if querier == nil {
		querier = r.storage
	}
	status := cr.Status
	if status == "" {
		status = entities.StatusNew
	}

	query, args, err := psql.Insert("credit_requests").
		Columns("status", "sent_date", "borrower_id", "offer_id").
		Values(status, cr.SentDate, cr.BorrowerID, cr.OfferID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var id uint64
	if err := querier.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("ошибка создания заявки: %w", mapWriteError(err))
	}
	return r.findOne(ctx, querier, nil, sq.Eq{"cr.id": id})
}

func (r *CreditRequestRepository) UpdateCreditRequest(ctx context.Context, cr *entities.CreditRequest) (*entities.CreditRequest, error) {
	query, args, err := psql.Update("credit_requests").
		Set("status", cr.Status).
		Set("sent_date", cr.SentDate).
		Set("borrower_id", cr.BorrowerID).
		Set("offer_id", cr.OfferID).
		Where(sq.Eq{"id": cr.ID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	res, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления заявки: %w", mapWriteError(err))
	}
	if res.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.FindCreditRequest(ctx, nil, cr.ID)
}

func (r *CreditRequestRepository) DeleteCreditRequest(ctx context.Context, id uint64) error {
	res, err := r.storage.Exec(ctx, "DELETE FROM credit_requests WHERE id = $1", id)
	if err != nil {
		return mapDeleteError(err)
	}
	if res.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CreditRequestRepository) ExistingOfferIDs(ctx context.Context, borrowerID uint64, offerIDs []uint64) (map[uint64]bool, error) {
	existing := make(map[uint64]bool)
	if len(offerIDs) == 0 {
		return existing, nil
	}

	query, args, err := psql.Select("DISTINCT offer_id").From("credit_requests").
		Where(sq.Eq{"borrower_id": borrowerID, "offer_id": offerIDs}).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска существующих заявок: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = true
	}
	return existing, rows.Err()
}
