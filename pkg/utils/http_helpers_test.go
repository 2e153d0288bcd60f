package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "loan-broker/pkg/errors"
)

func TestParseFilterFromQuery(t *testing.T) {
	values, err := url.ParseQuery("search=ivan&sort[created]=DESC&sort[bad]=up&filter[status]=new&filter[status]=sent&limit=1000&page=3")
	require.NoError(t, err)

	f := ParseFilterFromQuery(values)
	assert.Equal(t, "ivan", f.Search)
	assert.Equal(t, map[string]string{"created": "desc"}, f.Sort)
	assert.Equal(t, "new,sent", f.Filter["status"])
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 2*MaxLimit, f.Offset)
	assert.True(t, f.WithPagination)
}

func TestParseFilterFromQuery_Defaults(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{"withPagination": {"false"}})
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 0, f.Offset)
	assert.False(t, f.WithPagination)
}

func TestParseFilterFromQuery_PlainNames(t *testing.T) {
	values, err := url.ParseQuery("score_min=100&score_max=200&status=new&status=sent&offer=3&format=xlsx&limit=10")
	require.NoError(t, err)

	f := ParseFilterFromQuery(values)
	assert.Equal(t, map[string]interface{}{
		"score__gte": "100",
		"score__lte": "200",
		"status":     "new,sent",
		"offer":      "3",
	}, f.Filter)
	assert.Equal(t, 10, f.Limit)
}

func TestParseFilterFromQuery_BracketSyntaxWins(t *testing.T) {
	values, err := url.ParseQuery("status=new&filter[status]=sent&filter[score__gte]=5&kind=mortgage")
	require.NoError(t, err)

	f := ParseFilterFromQuery(values)
	assert.Equal(t, "sent", f.Filter["status"])
	assert.Equal(t, "5", f.Filter["score__gte"])
	assert.Equal(t, "mortgage", f.Filter["kind"])
}

func errorResponse(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, ErrorResponse(c, err, zap.NewNop()))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestErrorResponse_Taxonomy(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{apperrors.ErrTokenExpired, http.StatusUnauthorized},
		{fmt.Errorf("%w: list borrower", apperrors.ErrForbidden), http.StatusForbidden},
		{apperrors.ErrNotFound, http.StatusNotFound},
		{apperrors.ErrConflict, http.StatusConflict},
		{apperrors.NewFieldError("borrower", "недопустимое значение"), http.StatusBadRequest},
		{fmt.Errorf("ошибка подсчета анкет: %w", fmt.Errorf("%w: некорректное значение фильтра", apperrors.ErrValidation)), http.StatusBadRequest},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, body := errorResponse(t, tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.Equal(t, false, body["status"])
	}
}

func TestErrorResponse_HidesInternalDetails(t *testing.T) {
	_, body := errorResponse(t, errors.New("pq: password authentication failed"))
	assert.Equal(t, apperrors.ErrInternalServer.Error(), body["message"])

	_, body = errorResponse(t, fmt.Errorf("%w: update credit_request (edit_for_owner_or_superuser)", apperrors.ErrForbidden))
	assert.Equal(t, apperrors.ErrForbidden.Error(), body["message"])
}

func TestErrorResponse_FieldDetails(t *testing.T) {
	_, body := errorResponse(t, apperrors.NewFieldError("offer", "предложение не активно"))
	assert.Equal(t, map[string]interface{}{"offer": "предложение не активно"}, body["body"])
}
