package handler

import (
	"github.com/labstack/echo/v4"

	"marketplace/internal/adapter/api/middleware"
	"marketplace/internal/usecase"
	"marketplace/pkg/errors"
	"marketplace/pkg/response"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

type submitReviewRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Username string `json:"username" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=10"`
	Comment  string `json:"comment" validate:"max=2000"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=10"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

func (h *ReviewHandler) SubmitReview(c echo.Context) error {
	var req submitReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if actor := middleware.Actor(c); actor.Username != req.Username {
		return response.Error(c, errors.Forbidden("username does not match the session", nil))
	}

	review, err := h.reviewUseCase.Submit(c.Request().Context(), usecase.SubmitReviewInput{
		ItemID:   req.ItemID,
		Username: req.Username,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, review)
}

func (h *ReviewHandler) GetReview(c echo.Context) error {
	review, err := h.reviewUseCase.GetReview(c.Request().Context(), c.Param("reviewId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, review)
}

func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	var req updateReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	reviewID := c.Param("reviewId")
	if err := h.authorize(c, reviewID); err != nil {
		return response.Error(c, err)
	}

	review, err := h.reviewUseCase.Update(c.Request().Context(), reviewID, usecase.UpdateReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, review)
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	reviewID := c.Param("reviewId")
	if err := h.authorize(c, reviewID); err != nil {
		return response.Error(c, err)
	}

	if err := h.reviewUseCase.Delete(c.Request().Context(), reviewID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Review deleted",
	})
}

// authorize allows the author of the review or an admin.
func (h *ReviewHandler) authorize(c echo.Context, reviewID string) error {
	review, err := h.reviewUseCase.GetReview(c.Request().Context(), reviewID)
	if err != nil {
		return err
	}
	if !middleware.Actor(c).CanManage(review.Username) {
		return errors.Forbidden("You can only change your own reviews", nil)
	}
	return nil
}
