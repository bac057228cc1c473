package handler

import (
	"github.com/labstack/echo/v4"

	"marketplace/internal/adapter/api/middleware"
	"marketplace/internal/usecase"
	"marketplace/pkg/errors"
	"marketplace/pkg/response"
	"marketplace/pkg/utils"
)

type ItemHandler struct {
	itemUseCase   *usecase.ItemUseCase
	reviewUseCase *usecase.ReviewUseCase
}

func NewItemHandler(itemUseCase *usecase.ItemUseCase, reviewUseCase *usecase.ReviewUseCase) *ItemHandler {
	return &ItemHandler{
		itemUseCase:   itemUseCase,
		reviewUseCase: reviewUseCase,
	}
}

type itemRequest struct {
	Name        string                 `json:"name" validate:"required,max=200"`
	Description string                 `json:"description" validate:"max=5000"`
	Price       float64                `json:"price" validate:"gte=0"`
	Type        string                 `json:"type" validate:"required"`
	Attributes  map[string]interface{} `json:"attributes"`
}

func (r itemRequest) toInput() usecase.ItemInput {
	return usecase.ItemInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Type:        r.Type,
		Attributes:  r.Attributes,
	}
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	item, err := h.itemUseCase.CreateItem(c.Request().Context(), middleware.Actor(c).Username, req.toInput())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, item)
}

func (h *ItemHandler) ListItems(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, total, err := h.itemUseCase.ListItems(c.Request().Context(), usecase.ListItemsInput{
		Type:   c.QueryParam("type"),
		Seller: c.QueryParam("seller"),
		Query:  c.QueryParam("q"),
		Page:   pagination.Page,
		Limit:  pagination.PageSize,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	item, err := h.itemUseCase.GetItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) GetItemReviews(c echo.Context) error {
	reviews, err := h.reviewUseCase.ListItemReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reviews)
}

func (h *ItemHandler) UpdateItem(c echo.Context) error {
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	item, err := h.itemUseCase.UpdateItem(c.Request().Context(), middleware.Actor(c), c.Param("id"), req.toInput())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) UploadImage(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("file is required", err))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read uploaded file", err))
	}
	defer src.Close()

	item, err := h.itemUseCase.SetItemImage(
		c.Request().Context(),
		middleware.Actor(c),
		c.Param("id"),
		src,
		file.Header.Get(echo.HeaderContentType),
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) DeleteItem(c echo.Context) error {
	result, err := h.itemUseCase.DeleteItem(c.Request().Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
