package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loan-broker/internal/controllers"
	"loan-broker/internal/services"
)

func runCreditRequestRouter(secureGroup *echo.Group, creditRequestService services.CreditRequestServiceInterface, logger *zap.Logger) {
	creditRequestCtrl := controllers.NewCreditRequestController(creditRequestService, logger)

	creditRequests := secureGroup.Group("/credit-requests")
	creditRequests.GET("", creditRequestCtrl.GetCreditRequests)
	creditRequests.GET("/:id", creditRequestCtrl.FindCreditRequest)
	creditRequests.POST("", creditRequestCtrl.CreateCreditRequest)
	creditRequests.PUT("/:id", creditRequestCtrl.UpdateCreditRequest)
	creditRequests.PATCH("/:id", creditRequestCtrl.PatchCreditRequest)
	creditRequests.DELETE("/:id", creditRequestCtrl.DeleteCreditRequest)
}
