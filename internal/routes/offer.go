package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loan-broker/internal/controllers"
	"loan-broker/internal/services"
)

// runOfferRouter: публичная часть только читает, запись живёт под /admin.
func runOfferRouter(secureGroup *echo.Group, offerService services.OfferServiceInterface, logger *zap.Logger) {
	offerCtrl := controllers.NewOfferController(offerService, logger)

	offers := secureGroup.Group("/offers")
	offers.GET("", offerCtrl.GetOffers)
	offers.GET("/:id", offerCtrl.FindOffer)

	adminOffers := secureGroup.Group("/admin/offers")
	adminOffers.GET("", offerCtrl.GetOffers)
	adminOffers.GET("/:id", offerCtrl.FindOffer)
	adminOffers.POST("", offerCtrl.CreateOffer)
	adminOffers.PUT("/:id", offerCtrl.UpdateOffer)
	adminOffers.PATCH("/:id", offerCtrl.UpdateOffer)
	adminOffers.DELETE("/:id", offerCtrl.DeleteOffer)
}
