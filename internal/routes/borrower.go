package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loan-broker/internal/controllers"
	"loan-broker/internal/services"
)

func runBorrowerRouter(secureGroup *echo.Group, borrowerService services.BorrowerServiceInterface, logger *zap.Logger) {
	borrowerCtrl := controllers.NewBorrowerController(borrowerService, logger)

	borrowers := secureGroup.Group("/borrowers")
	borrowers.GET("", borrowerCtrl.GetBorrowers)
	borrowers.GET("/:id", borrowerCtrl.FindBorrower)
	borrowers.POST("", borrowerCtrl.CreateBorrower)
	borrowers.PUT("/:id", borrowerCtrl.UpdateBorrower)
	borrowers.PATCH("/:id", borrowerCtrl.UpdateBorrower)
	borrowers.DELETE("/:id", borrowerCtrl.DeleteBorrower)
}
