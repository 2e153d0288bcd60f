package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loan-broker/internal/dto"
	"loan-broker/internal/services"
	"loan-broker/pkg/utils"
)

// OfferController: чтение для партнёров, запись только через /admin.
type OfferController struct {
	offerService services.OfferServiceInterface
	logger       *zap.Logger
}

func NewOfferController(offerService services.OfferServiceInterface, logger *zap.Logger) *OfferController {
	return &OfferController{
		offerService: offerService,
		logger:       logger,
	}
}

func (c *OfferController) GetOffers(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	offers, total, err := c.offerService.GetOffers(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if offers == nil {
		offers = make([]dto.OfferDTO, 0)
	}

	return utils.SuccessResponse(ctx, offers, "Успешно", http.StatusOK, total)
}

func (c *OfferController) FindOffer(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.offerService.FindOffer(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Успешно", http.StatusOK)
}

func (c *OfferController) CreateOffer(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateOfferDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	created, err := c.offerService.CreateOffer(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, created, "Предложение создано", http.StatusCreated)
}

func (c *OfferController) UpdateOffer(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateOfferDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	updated, err := c.offerService.UpdateOffer(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, updated, "Предложение обновлено", http.StatusOK)
}

func (c *OfferController) DeleteOffer(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.offerService.DeleteOffer(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.NoContent(http.StatusNoContent)
}
