package router

import (
	"marketplace/internal/adapter/api/handler"
	"marketplace/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const maxImageBody = "5M"

func SetupItemRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	itemHandler := handler.GetItemHandler()

	// Public routes
	items := e.Group("/v1/items")
	items.GET("", itemHandler.ListItems)
	items.GET("/:id", itemHandler.GetItem)
	items.GET("/:id/reviews", itemHandler.GetItemReviews)

	// Protected routes
	protected := e.Group("/v1/items")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("", itemHandler.CreateItem)
	protected.PUT("/:id", itemHandler.UpdateItem)
	protected.POST("/:id/image", itemHandler.UploadImage, echomiddleware.BodyLimit(maxImageBody))
	protected.DELETE("/:id", itemHandler.DeleteItem)
}
