package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "loan-broker/pkg/errors"
)

func parseID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, nil)
	}
	return id, nil
}

// bindAndValidate: ошибки валидатора отдаются как есть, чтобы клиент получил поля.
func bindAndValidate(ctx echo.Context, payload interface{}) error {
	if err := ctx.Bind(payload); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil)
	}
	return ctx.Validate(payload)
}
