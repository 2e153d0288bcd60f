package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/types"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// publicErrors - ошибки, текст которых можно показать клиенту как есть.
var publicErrors = []error{
	apperrors.ErrEmptyAuthHeader,
	apperrors.ErrInvalidAuthHeader,
	apperrors.ErrTokenExpired,
	apperrors.ErrInvalidToken,
	apperrors.ErrInvalidSigningMethod,
	apperrors.ErrInvalidCredentials,
	apperrors.ErrUnauthorized,
	apperrors.ErrForbidden,
	apperrors.ErrNotFound,
	apperrors.ErrValidation,
	apperrors.ErrConflict,
}

// Служебные параметры списка; всё остальное на верхнем уровне считается фильтром.
var reservedQueryParams = map[string]bool{
	"limit":          true,
	"page":           true,
	"offset":         true,
	"withPagination": true,
	"search":         true,
	"format":         true,
}

// Суффиксы диапазона: score_min=100 - то же, что filter[score__gte]=100.
const (
	rangeMinSuffix = "_min"
	rangeMaxSuffix = "_max"
)

// filterKey переводит имя параметра запроса в ключ Filter.
func filterKey(param string) string {
	switch {
	case strings.HasSuffix(param, rangeMinSuffix) && len(param) > len(rangeMinSuffix):
		return strings.TrimSuffix(param, rangeMinSuffix) + "__gte"
	case strings.HasSuffix(param, rangeMaxSuffix) && len(param) > len(rangeMaxSuffix):
		return strings.TrimSuffix(param, rangeMaxSuffix) + "__lte"
	}
	return param
}

// ParseFilterFromQuery разбирает пагинацию, сортировку и фильтры.
// Фильтр задаётся как ?status=new&score_min=100 или как ?filter[status]=new;
// при совпадении ключей побеждает filter[...]. Поля вне белого списка
// репозитория отбрасываются уже при построении запроса.
func ParseFilterFromQuery(values url.Values) types.Filter {
	filterReq := types.Filter{
		Sort:   make(map[string]string),
		Filter: make(map[string]interface{}),
		Limit:  DefaultLimit,
		Page:   1,
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			if l > MaxLimit {
				filterReq.Limit = MaxLimit
			} else {
				filterReq.Limit = l
			}
		}
	}

	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filterReq.Page = p
		}
	}

	if offsetStr := values.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filterReq.Offset = o
		}
	} else {
		filterReq.Offset = (filterReq.Page - 1) * filterReq.Limit
	}

	filterReq.WithPagination = values.Get("withPagination") != "false"

	plain := make(map[string]interface{})
	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}

		if key == "search" {
			filterReq.Search = vals[0]
			continue
		}

		if strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]") {
			field := key[5 : len(key)-1]
			direction := strings.ToLower(vals[0])
			if direction == "asc" || direction == "desc" {
				filterReq.Sort[field] = direction
			}
			continue
		}

		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			field := key[7 : len(key)-1]
			filterReq.Filter[field] = strings.Join(vals, ",")
			continue
		}

		if reservedQueryParams[key] || strings.ContainsAny(key, "[]") {
			continue
		}
		plain[filterKey(key)] = strings.Join(vals, ",")
	}

	for key, val := range plain {
		if _, ok := filterReq.Filter[key]; !ok {
			filterReq.Filter[key] = val
		}
	}

	return filterReq
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...uint64) error {
	response := &HTTPResponse{Status: true, Message: message}
	withPagination, _ := strconv.ParseBool(ctx.QueryParam("withPagination"))
	if withPagination && len(total) > 0 {
		filter := ParseFilterFromQuery(ctx.Request().URL.Query())
		response.Body = map[string]interface{}{
			"list":       body,
			"pagination": types.NewPagination(total[0], filter.Page, filter.Limit),
		}
	} else {
		response.Body = body
	}
	return ctx.JSON(code, response)
}

// ErrorResponse переводит ошибку в ответ по таксономии apperrors.StatusCode.
// Внутренние детали уходят только в лог.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Code >= http.StatusInternalServerError && httpErr.Err != nil {
			logger.Error("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
			)
		}
		response := map[string]interface{}{
			"status":  false,
			"message": httpErr.Message,
		}
		if httpErr.Details != nil {
			response["body"] = httpErr.Details
		}
		return c.JSON(httpErr.Code, response)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			details[e.Field()] = fmt.Sprintf("не прошло проверку '%s'", e.Tag())
		}
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  false,
			"message": apperrors.ErrValidation.Error(),
			"body":    details,
		})
	}

	code := apperrors.StatusCode(err)
	if code == http.StatusInternalServerError {
		logger.Error("Unexpected Error", zap.Error(err))
		return c.JSON(code, map[string]interface{}{
			"status":  false,
			"message": apperrors.ErrInternalServer.Error(),
		})
	}

	message := err.Error()
	for _, known := range publicErrors {
		if errors.Is(err, known) {
			message = known.Error()
			break
		}
	}
	logger.Debug("Запрос отклонён", zap.Int("code", code), zap.Error(err))
	return c.JSON(code, map[string]interface{}{
		"status":  false,
		"message": message,
	})
}
