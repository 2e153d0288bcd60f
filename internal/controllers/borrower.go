package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loan-broker/internal/dto"
	"loan-broker/internal/services"
	"loan-broker/pkg/utils"
)

type BorrowerController struct {
	borrowerService services.BorrowerServiceInterface
	logger          *zap.Logger
}

func NewBorrowerController(borrowerService services.BorrowerServiceInterface, logger *zap.Logger) *BorrowerController {
	return &BorrowerController{
		borrowerService: borrowerService,
		logger:          logger,
	}
}

func (c *BorrowerController) GetBorrowers(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	borrowers, total, err := c.borrowerService.GetBorrowers(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if borrowers == nil {
		borrowers = make([]dto.BorrowerDTO, 0)
	}

	return utils.SuccessResponse(ctx, borrowers, "Успешно", http.StatusOK, total)
}

func (c *BorrowerController) FindBorrower(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.borrowerService.FindBorrower(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Успешно", http.StatusOK)
}

func (c *BorrowerController) CreateBorrower(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateBorrowerDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	created, err := c.borrowerService.CreateBorrower(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, created, "Анкета создана", http.StatusCreated)
}

// UpdateBorrower обслуживает PUT и PATCH: отсутствующие поля не меняются.
func (c *BorrowerController) UpdateBorrower(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateBorrowerDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	updated, err := c.borrowerService.UpdateBorrower(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, updated, "Анкета обновлена", http.StatusOK)
}

func (c *BorrowerController) DeleteBorrower(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.borrowerService.DeleteBorrower(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.NoContent(http.StatusNoContent)
}
