package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loan-broker/internal/controllers"
	"loan-broker/internal/services"
)

func runCompanyRouter(secureGroup *echo.Group, companyService services.CompanyServiceInterface, logger *zap.Logger) {
	companyCtrl := controllers.NewCompanyController(companyService, logger)

	companies := secureGroup.Group("/companies")
	companies.GET("", companyCtrl.GetCompanies)
	companies.GET("/:id", companyCtrl.FindCompany)
}
