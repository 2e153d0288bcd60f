package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	apperrors "loan-broker/pkg/errors"
)

func TestMapReadError(t *testing.T) {
	for _, code := range []string{"22P02", "22003", "22007", "22008"} {
		err := fmt.Errorf("ошибка подсчета анкет: %w", mapReadError(&pgconn.PgError{Code: code, Message: "bad input"}))
		assert.ErrorIs(t, err, apperrors.ErrValidation, code)
	}

	other := &pgconn.PgError{Code: "57014"}
	assert.Same(t, other, mapReadError(other))

	plain := errors.New("conn closed")
	assert.Equal(t, plain, mapReadError(plain))
}
