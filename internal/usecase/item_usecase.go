package usecase

import (
	"context"
	"io"
	"net/http"
	"strings"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/repository"
	"marketplace/pkg/errors"
	"marketplace/pkg/logger"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type ItemUseCase struct {
	itemRepo repository.ItemRepository
	userRepo repository.UserRepository
	reviews  *ReviewUseCase
	images   ImageStore
}

// NewItemUseCase wires the catalog. images may be nil, in which case image
// uploads are rejected.
func NewItemUseCase(
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	reviews *ReviewUseCase,
	images ImageStore,
) *ItemUseCase {
	return &ItemUseCase{
		itemRepo: itemRepo,
		userRepo: userRepo,
		reviews:  reviews,
		images:   images,
	}
}

type ItemInput struct {
	Name        string
	Description string
	Price       float64
	Type        string
	Attributes  map[string]interface{}
}

type ListItemsInput struct {
	Type   string
	Seller string
	Query  string
	Page   int
	Limit  int
}

func (in ItemInput) validate() (entity.ItemType, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", errors.Validation("name is required")
	}
	if in.Price < 0 {
		return "", errors.Validation("price must not be negative")
	}
	itemType, err := entity.ParseItemType(in.Type)
	if err != nil {
		return "", errors.Validation(err.Error())
	}
	if err := itemType.ValidateAttributes(in.Attributes); err != nil {
		return "", errors.Validation(err.Error())
	}
	return itemType, nil
}

func (uc *ItemUseCase) CreateItem(ctx context.Context, seller string, input ItemInput) (*entity.Item, error) {
	itemType, err := input.validate()
	if err != nil {
		return nil, err
	}
	if _, err := uc.userRepo.GetByUsername(ctx, seller); err != nil {
		return nil, err
	}

	item := &entity.Item{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Seller:      seller,
		Type:        itemType,
		Attributes:  input.Attributes,
		Reviews:     []entity.ItemReview{},
	}
	if err := uc.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *ItemUseCase) GetItem(ctx context.Context, id string) (*entity.Item, error) {
	return uc.itemRepo.GetByID(ctx, id)
}

func (uc *ItemUseCase) ListItems(ctx context.Context, input ListItemsInput) ([]*entity.Item, int64, error) {
	filter := repository.ItemFilter{
		Seller: strings.TrimSpace(input.Seller),
		Query:  strings.TrimSpace(input.Query),
	}
	if input.Type != "" {
		itemType, err := entity.ParseItemType(input.Type)
		if err != nil {
			return nil, 0, errors.Validation(err.Error())
		}
		filter.Type = itemType
	}

	offset := (input.Page - 1) * input.Limit
	if offset < 0 {
		offset = 0
	}
	return uc.itemRepo.List(ctx, filter, input.Limit, offset)
}

// UpdateItem replaces the listing fields. Ratings, counts and reviews are
// owned by the review ledger and never taken from input. Past reviews keep the
// item name they were written against.
func (uc *ItemUseCase) UpdateItem(ctx context.Context, actor Actor, id string, input ItemInput) (*entity.Item, error) {
	itemType, err := input.validate()
	if err != nil {
		return nil, err
	}

	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(item.Seller) {
		return nil, errors.Forbidden("You don't have permission to update this item", nil)
	}

	item.Name = strings.TrimSpace(input.Name)
	item.Description = input.Description
	item.Price = input.Price
	item.Type = itemType
	item.Attributes = input.Attributes

	if err := uc.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *ItemUseCase) SetItemImage(ctx context.Context, actor Actor, id string, file io.Reader, contentType string) (*entity.Item, error) {
	if uc.images == nil {
		return nil, errors.New("UNAVAILABLE", "Image uploads are not configured", http.StatusServiceUnavailable, nil)
	}
	if !allowedImageTypes[contentType] {
		return nil, errors.Validation("image must be jpeg, png, gif or webp")
	}

	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(item.Seller) {
		return nil, errors.Forbidden("You don't have permission to update this item", nil)
	}

	url, err := uc.images.UploadImage(ctx, file, contentType, "items/"+item.ID)
	if err != nil {
		return nil, errors.Internal("Failed to upload image", err)
	}

	previous := item.ImageURL
	item.ImageURL = url
	if err := uc.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	uc.dropImage(ctx, previous)

	return item, nil
}

// DeleteItem removes an item together with the mirrored reviews its
// reviewers hold.
func (uc *ItemUseCase) DeleteItem(ctx context.Context, actor Actor, id string) (*CascadeResult, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(item.Seller) {
		return nil, errors.Forbidden("You don't have permission to delete this item", nil)
	}

	result, err := uc.reviews.DeleteAllForItem(ctx, item.ID)
	if err != nil {
		return result, err
	}
	uc.dropImage(ctx, item.ImageURL)

	logger.Info("Item %s deleted by %s, %d reviews detached from %d users",
		item.ID, actor.Username, result.RemovedReviews, len(result.Affected))
	return result, nil
}

func (uc *ItemUseCase) dropImage(ctx context.Context, url string) {
	if url == "" || uc.images == nil {
		return
	}
	if err := uc.images.DeleteImage(ctx, url); err != nil {
		logger.Warn("Failed to delete image %s: %v", url, err)
	}
}
