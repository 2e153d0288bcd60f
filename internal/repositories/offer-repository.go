package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"loan-broker/internal/activity"
	"loan-broker/internal/entities"
	db "loan-broker/internal/infrastructure/bd"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/types"
)

var offerColumns = []string{
	"o.id", "o.name", "o.company_id", "o.rotation_start", "o.rotation_end",
	"o.kind", "o.min_score", "o.max_score", "o.created_at", "o.modified_at",
}

var offerMap = map[string]string{
	"id":             "o.id",
	"kind":           "o.kind",
	"company":        "o.company_id",
	"min_score":      "o.min_score",
	"max_score":      "o.max_score",
	"rotation_start": "o.rotation_start",
	"rotation_end":   "o.rotation_end",
	"created":        "o.created_at",
}

type OfferRepositoryInterface interface {
	GetOffers(ctx context.Context, scope sq.Sqlizer, filter types.Filter) ([]entities.Offer, uint64, error)
	FindOffer(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.Offer, error)
	// FindEligible - активные на момент at предложения, чей диапазон баллов содержит score.
	FindEligible(ctx context.Context, score int, at time.Time) ([]entities.Offer, error)
	CreateOffer(ctx context.Context, offer *entities.Offer) (*entities.Offer, error)
	UpdateOffer(ctx context.Context, offer *entities.Offer) (*entities.Offer, error)
	DeleteOffer(ctx context.Context, id uint64) error
}

type OfferRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOfferRepository(storage *pgxpool.Pool, logger *zap.Logger) OfferRepositoryInterface {
	return &OfferRepository{storage: storage, logger: logger}
}

func scanOffer(row pgx.Row) (*entities.Offer, error) {
	var o entities.Offer
	err := row.Scan(
		&o.ID, &o.Name, &o.CompanyID, &o.RotationStart, &o.RotationEnd,
		&o.Kind, &o.MinScore, &o.MaxScore, &o.CreatedAt, &o.ModifiedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования offer: %w", err)
	}
	return &o, nil
}

// ScoreBand - предикат "min_score <= score <= max_score".
func ScoreBand(alias string, score interface{}) sq.Sqlizer {
	return sq.And{
		sq.LtOrEq{alias + ".min_score": score},
		sq.GtOrEq{alias + ".max_score": score},
	}
}

// offerScoreFilter обрабатывает filter[score]: предложения, принимающие этот балл.
func offerScoreFilter(b sq.SelectBuilder, filter types.Filter) (sq.SelectBuilder, types.Filter) {
	score, ok := filter.Filter["score"]
	if !ok {
		return b, filter
	}
	rest := make(map[string]interface{}, len(filter.Filter))
	for k, v := range filter.Filter {
		if k != "score" {
			rest[k] = v
		}
	}
	filter.Filter = rest
	return b.Where(ScoreBand("o", score)), filter
}

func (r *OfferRepository) GetOffers(ctx context.Context, scope sq.Sqlizer, filter types.Filter) ([]entities.Offer, uint64, error) {
	countBuilder := withScope(psql.Select("COUNT(o.id)").From("offers AS o"), scope)
	countBuilder, countFilter := offerScoreFilter(countBuilder, filter)
	countBuilder = db.ApplySearch(countBuilder, filter.Search, "o.name")
	countBuilder = db.ApplyFilters(countBuilder, countFilter, offerMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета предложений: %w", mapReadError(err))
	}
	if total == 0 {
		return []entities.Offer{}, 0, nil
	}

	builder := withScope(psql.Select(offerColumns...).From("offers AS o"), scope)
	builder, listFilter := offerScoreFilter(builder, filter)
	builder = db.ApplySearch(builder, filter.Search, "o.name")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("o.created_at DESC", "o.id DESC")
	}
	builder = db.ApplyListParams(builder, listFilter, offerMap)

	return r.list(ctx, builder, total)
}

func (r *OfferRepository) list(ctx context.Context, builder sq.SelectBuilder, total uint64) ([]entities.Offer, uint64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения предложений: %w", mapReadError(err))
	}
	defer rows.Close()

	offers := make([]entities.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, 0, err
		}
		offers = append(offers, *o)
	}
	if total == 0 {
		total = uint64(len(offers))
	}
	return offers, total, rows.Err()
}

func (r *OfferRepository) FindEligible(ctx context.Context, score int, at time.Time) ([]entities.Offer, error) {
	builder := psql.Select(offerColumns...).From("offers AS o").
		Where(activity.ActiveAt("o", at)).
		Where(ScoreBand("o", score)).
		OrderBy("o.id ASC")
	offers, _, err := r.list(ctx, builder, 0)
	return offers, err
}

func (r *OfferRepository) FindOffer(ctx context.Context, scope sq.Sqlizer, id uint64) (*entities.Offer, error) {
	builder := withScope(psql.Select(offerColumns...).From("offers AS o").Where(sq.Eq{"o.id": id}), scope)
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanOffer(r.storage.QueryRow(ctx, query, args...))
}

func (r *OfferRepository) CreateOffer(ctx context.Context, o *entities.Offer) (*entities.Offer, error) {
	query, args, err := psql.Insert("offers").
		Columns("name", "company_id", "rotation_start", "rotation_end", "kind", "min_score", "max_score").
		Values(o.Name, o.CompanyID, o.RotationStart, o.RotationEnd, o.Kind, o.MinScore, o.MaxScore).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var id uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("ошибка создания предложения: %w", mapWriteError(err))
	}
	return r.FindOffer(ctx, nil, id)
}

func (r *OfferRepository) UpdateOffer(ctx context.Context, o *entities.Offer) (*entities.Offer, error) {
	query, args, err := psql.Update("offers").
		Set("name", o.Name).
		Set("company_id", o.CompanyID).
		Set("rotation_start", o.RotationStart).
		Set("rotation_end", o.RotationEnd).
		Set("kind", o.Kind).
		Set("min_score", o.MinScore).
		Set("max_score", o.MaxScore).
		Set("modified_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	res, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления предложения: %w", mapWriteError(err))
	}
	if res.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.FindOffer(ctx, nil, o.ID)
}

func (r *OfferRepository) DeleteOffer(ctx context.Context, id uint64) error {
	res, err := r.storage.Exec(ctx, "DELETE FROM offers WHERE id = $1", id)
	if err != nil {
		return mapDeleteError(err)
	}
	if res.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
