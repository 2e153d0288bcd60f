package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loan-broker/pkg/contextkeys"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/service"
)

type ctxKey string

func runAuth(t *testing.T, header string, enrich ContextEnricher) (*httptest.ResponseRecorder, context.Context) {
	t.Helper()
	jwtSvc := service.NewJWTService("secret", time.Hour, zap.NewNop())
	m := NewAuthMiddleware(jwtSvc, enrich, zap.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen context.Context
	err := m.Auth(func(c echo.Context) error {
		seen = c.Request().Context()
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec, seen
}

func token(t *testing.T, userID uint64) string {
	t.Helper()
	tok, err := service.NewJWTService("secret", time.Hour, zap.NewNop()).GenerateToken(userID)
	require.NoError(t, err)
	return tok
}

func TestAuth_MissingAndMalformedHeader(t *testing.T) {
	rec, seen := runAuth(t, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)

	rec, _ = runAuth(t, "Token abc", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = runAuth(t, "Bearer not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidTokenEnrichesContext(t *testing.T) {
	enrich := func(ctx context.Context, userID uint64) (context.Context, error) {
		return context.WithValue(ctx, ctxKey("company"), uint64(7)), nil
	}
	rec, seen := runAuth(t, "Bearer "+token(t, 42), enrich)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, uint64(42), seen.Value(contextkeys.UserIDKey))
	assert.Equal(t, uint64(7), seen.Value(ctxKey("company")))
}

func TestAuth_EnrichFailureStopsRequest(t *testing.T) {
	enrich := func(ctx context.Context, userID uint64) (context.Context, error) {
		return nil, errors.Join(apperrors.ErrUnauthorized, errors.New("user disabled"))
	}
	rec, seen := runAuth(t, "Bearer "+token(t, 42), enrich)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}
