package repository

import (
	"context"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/rating"
)

type UserRepository interface {
	// Create fails with a conflict when the username is taken.
	Create(ctx context.Context, user *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, int64, error)
	SetAdmin(ctx context.Context, username string, isAdmin bool) error
	Delete(ctx context.Context, username string) error

	AddReview(ctx context.Context, username string, review entity.UserReview) error
	UpdateReview(ctx context.Context, username, reviewID string, patch entity.ReviewPatch) error
	RemoveReview(ctx context.Context, username, reviewID string) (bool, error)
	// RemoveReviewsFor drops every entry referencing itemID.
	RemoveReviewsFor(ctx context.Context, username, itemID string) (int, error)
	Recalculate(ctx context.Context, username string, aggregate rating.AggregateFunc) (float64, error)
}
