package router

import (
	"marketplace/internal/adapter/api/handler"
	"marketplace/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/v1/users")

	users.GET("/me", userHandler.GetCurrentUser, authMiddleware.Authenticate)
	users.GET("/:username", userHandler.GetProfile)
	users.GET("/:username/reviews", userHandler.GetUserReviews)
	users.DELETE("/:username", userHandler.DeleteUser, authMiddleware.Authenticate)
}
