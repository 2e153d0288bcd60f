package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loan-broker/internal/dto"
	"loan-broker/internal/services"
	"loan-broker/pkg/utils"
)

type CompanyController struct {
	companyService services.CompanyServiceInterface
	logger         *zap.Logger
}

func NewCompanyController(companyService services.CompanyServiceInterface, logger *zap.Logger) *CompanyController {
	return &CompanyController{
		companyService: companyService,
		logger:         logger,
	}
}

func (c *CompanyController) GetCompanies(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	companies, total, err := c.companyService.GetCompanies(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if companies == nil {
		companies = make([]dto.CompanyDTO, 0)
	}

	return utils.SuccessResponse(ctx, companies, "Успешно", http.StatusOK, total)
}

func (c *CompanyController) FindCompany(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.companyService.FindCompany(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Успешно", http.StatusOK)
}
