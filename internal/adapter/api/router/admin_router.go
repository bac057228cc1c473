package router

import (
	"marketplace/internal/adapter/api/handler"
	"marketplace/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	userHandler := handler.GetUserHandler()
	itemHandler := handler.GetItemHandler()

	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("/users", userHandler.ListUsers)
	admin.PATCH("/users/:username/admin", userHandler.SetAdmin)
	admin.DELETE("/users/:username", userHandler.DeleteUser)
	admin.DELETE("/items/:id", itemHandler.DeleteItem)
}
