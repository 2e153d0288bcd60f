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
	apperrors "loan-broker/pkg/errors"
)

var userColumns = []string{"u.id", "u.username", "u.password_hash", "u.is_superuser", "u.is_active", "u.created_at"}

type UserRepositoryInterface interface {
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByUsername(ctx context.Context, username string) (*entities.User, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsSuperuser, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Eq) (*entities.User, error) {
	query, args, err := psql.Select(userColumns...).From("users AS u").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"u.id": id})
}

// FindUserByUsername: отсутствие пользователя - ErrInvalidCredentials, чтобы не раскрывать логины.
func (r *UserRepository) FindUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	user, err := r.findOne(ctx, sq.Eq{"u.username": username})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, err
}
