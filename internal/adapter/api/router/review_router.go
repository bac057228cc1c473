package router

import (
	"marketplace/internal/adapter/api/handler"
	"marketplace/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupReviewRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	reviewHandler := handler.GetReviewHandler()

	// Public routes
	reviews := e.Group("/v1/reviews")
	reviews.GET("/:reviewId", reviewHandler.GetReview)

	// Protected routes
	protected := e.Group("/v1/reviews")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("", reviewHandler.SubmitReview)
	protected.PUT("/:reviewId", reviewHandler.UpdateReview)
	protected.DELETE("/:reviewId", reviewHandler.DeleteReview)
}
