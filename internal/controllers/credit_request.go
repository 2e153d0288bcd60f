package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"loan-broker/internal/dto"
	"loan-broker/internal/services"
	"loan-broker/pkg/utils"
)

// MatchJobHeader - идентификатор задания подбора в ответе на создание заявки.
const MatchJobHeader = "X-Match-Job-ID"

type CreditRequestController struct {
	creditRequestService services.CreditRequestServiceInterface
	logger               *zap.Logger
}

func NewCreditRequestController(creditRequestService services.CreditRequestServiceInterface, logger *zap.Logger) *CreditRequestController {
	return &CreditRequestController{
		creditRequestService: creditRequestService,
		logger:               logger,
	}
}

func (c *CreditRequestController) GetCreditRequests(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	format := strings.ToLower(ctx.QueryParam("format"))
	if format == "xlsx" {
		// Выгружаем весь доступный список
		filter.WithPagination = false
	}

	list, total, err := c.creditRequestService.GetCreditRequests(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if list == nil {
		list = make([]dto.CreditRequestDTO, 0)
	}

	if format == "xlsx" {
		return c.respondWithXLSX(ctx, list)
	}
	return utils.SuccessResponse(ctx, list, "Успешно", http.StatusOK, total)
}

func (c *CreditRequestController) FindCreditRequest(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.creditRequestService.FindCreditRequest(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Успешно", http.StatusOK)
}

// CreateCreditRequest принимает ввод и сразу отвечает 201; заявки появятся после подбора.
func (c *CreditRequestController) CreateCreditRequest(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateCreditRequestDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	jobID, err := c.creditRequestService.CreateCreditRequest(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ctx.Response().Header().Set(MatchJobHeader, jobID)
	return ctx.NoContent(http.StatusCreated)
}

func (c *CreditRequestController) UpdateCreditRequest(ctx echo.Context) error {
	return c.update(ctx, false)
}

func (c *CreditRequestController) PatchCreditRequest(ctx echo.Context) error {
	return c.update(ctx, true)
}

func (c *CreditRequestController) update(ctx echo.Context, partial bool) error {
	reqCtx := ctx.Request().Context()

	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateCreditRequestDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	updated, err := c.creditRequestService.UpdateCreditRequest(reqCtx, id, payload, partial)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, updated, "Заявка обновлена", http.StatusOK)
}

func (c *CreditRequestController) DeleteCreditRequest(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.creditRequestService.DeleteCreditRequest(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.NoContent(http.StatusNoContent)
}

var creditRequestHeaders = []interface{}{
	"ID", "Создана", "Отправлена", "Статус", "ID анкеты", "Заёмщик", "Скоринг", "ID предложения",
}

func creditRequestRow(item dto.CreditRequestDTO) []interface{} {
	const dateFmt = "02.01.2006 15:04"
	var sent, borrowerName string
	var score interface{}
	if item.SentDate != nil {
		sent = item.SentDate.Format(dateFmt)
	}
	if b := item.BorrowerDetail; b != nil {
		borrowerName = strings.TrimSpace(strings.Join([]string{b.LastName, b.FirstName, b.MiddleName}, " "))
		score = b.Score
	}

	return []interface{}{
		item.ID, item.Created.Format(dateFmt), sent, item.Status,
		item.Borrower, borrowerName, score, item.Offer,
	}
}

func (c *CreditRequestController) respondWithXLSX(ctx echo.Context, list []dto.CreditRequestDTO) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			c.logger.Warn("не удалось закрыть XLSX", zap.Error(err))
		}
	}()

	if err := fillCreditRequestSheet(f, list); err != nil {
		return utils.ErrorResponse(ctx, fmt.Errorf("ошибка формирования XLSX: %w", err), c.logger)
	}

	fileName := fmt.Sprintf("credit_requests_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

func fillCreditRequestSheet(f *excelize.File, list []dto.CreditRequestDTO) error {
	sheet := "Заявки"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &creditRequestHeaders); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(creditRequestHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
		return err
	}

	for i, item := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := creditRequestRow(item)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "B", "C", 18); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "F", "F", 35)
}
