package usecase

import (
	"context"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/repository"
	"marketplace/pkg/errors"
	"marketplace/pkg/logger"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	reviews  *ReviewUseCase
}

func NewUserUseCase(userRepo repository.UserRepository, reviews *ReviewUseCase) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		reviews:  reviews,
	}
}

func (uc *UserUseCase) GetProfile(ctx context.Context, username string) (*entity.User, error) {
	return uc.userRepo.GetByUsername(ctx, username)
}

func (uc *UserUseCase) ListUsers(ctx context.Context, page, limit int) ([]*entity.User, int64, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return uc.userRepo.List(ctx, limit, offset)
}

func (uc *UserUseCase) SetAdmin(ctx context.Context, actor Actor, username string, isAdmin bool) (*entity.User, error) {
	if !actor.IsAdmin {
		return nil, errors.Forbidden("Admin privileges required", nil)
	}
	if actor.Username == username && !isAdmin {
		return nil, errors.BadRequest("Admins cannot revoke their own privileges", nil)
	}

	if err := uc.userRepo.SetAdmin(ctx, username, isAdmin); err != nil {
		return nil, err
	}
	logger.Info("Admin flag of %s set to %t by %s", username, isAdmin, actor.Username)

	return uc.userRepo.GetByUsername(ctx, username)
}

// DeleteUser removes an account and every review it wrote. Items the user
// sells stay listed.
func (uc *UserUseCase) DeleteUser(ctx context.Context, actor Actor, username string) (*CascadeResult, error) {
	if !actor.CanManage(username) {
		return nil, errors.Forbidden("You don't have permission to delete this user", nil)
	}

	result, err := uc.reviews.DeleteAllForUser(ctx, username)
	if err != nil {
		return result, err
	}
	logger.Info("User %s deleted by %s, %d reviews detached from %d items",
		username, actor.Username, result.RemovedReviews, len(result.Affected))
	return result, nil
}
