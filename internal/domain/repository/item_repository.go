package repository

import (
	"context"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/rating"
)

type ItemFilter struct {
	Type   entity.ItemType
	Seller string
	Query  string
}

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	List(ctx context.Context, filter ItemFilter, limit, offset int) ([]*entity.Item, int64, error)
	// Update writes the listing fields only; derived rating fields and
	// embedded reviews are left untouched.
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id string) error

	// FindByReviewID returns the item embedding the review with the given id.
	FindByReviewID(ctx context.Context, reviewID string) (*entity.Item, error)
	AddReview(ctx context.Context, itemID string, review entity.ItemReview) error
	UpdateReview(ctx context.Context, itemID, reviewID string, patch entity.ReviewPatch) error
	// RemoveReview reports whether an entry was removed.
	RemoveReview(ctx context.Context, itemID, reviewID string) (bool, error)
	// RemoveReviewsBy drops every entry written by username and returns how
	// many were removed.
	RemoveReviewsBy(ctx context.Context, itemID, username string) (int, error)
	// Recalculate re-reads the stored review list, applies aggregate and
	// persists the result as the item rating, all within one document write.
	Recalculate(ctx context.Context, itemID string, aggregate rating.AggregateFunc) (float64, error)
}
