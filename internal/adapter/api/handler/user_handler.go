package handler

import (
	"github.com/labstack/echo/v4"

	"marketplace/internal/adapter/api/middleware"
	"marketplace/internal/usecase"
	"marketplace/pkg/errors"
	"marketplace/pkg/response"
	"marketplace/pkg/utils"
)

type UserHandler struct {
	userUseCase   *usecase.UserUseCase
	reviewUseCase *usecase.ReviewUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase, reviewUseCase *usecase.ReviewUseCase) *UserHandler {
	return &UserHandler{
		userUseCase:   userUseCase,
		reviewUseCase: reviewUseCase,
	}
}

func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	actor := middleware.Actor(c)

	user, err := h.userUseCase.GetProfile(c.Request().Context(), actor.Username)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userUseCase.GetProfile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) GetUserReviews(c echo.Context) error {
	reviews, err := h.reviewUseCase.ListUserReviews(c.Request().Context(), c.Param("username"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reviews)
}

// DeleteUser serves both the self-service and the admin route; the use case
// decides whether the caller may remove the account.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	actor := middleware.Actor(c)

	result, err := h.userUseCase.DeleteUser(c.Request().Context(), actor, c.Param("username"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	users, total, err := h.userUseCase.ListUsers(c.Request().Context(), pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, users, total, pagination.Page, pagination.PageSize)
}

func (h *UserHandler) SetAdmin(c echo.Context) error {
	var req struct {
		IsAdmin *bool `json:"is_admin" validate:"required"`
	}

	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	username := c.Param("username")
	if username == "" {
		return response.Error(c, errors.BadRequest("Username is required", nil))
	}

	user, err := h.userUseCase.SetAdmin(c.Request().Context(), middleware.Actor(c), username, *req.IsAdmin)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
