package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/rating"
	"marketplace/internal/domain/repository"
	"marketplace/pkg/errors"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User // keyed by username
}

func NewMemoryUserRepository() repository.UserRepository {
	return &memoryUserRepository{
		users: make(map[string]*entity.User),
	}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return errors.Conflict("Username already taken")
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.ReviewCount = len(user.Reviews)

	r.users[user.Username] = cloneUser(user)
	return nil
}

func (r *memoryUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return cloneUser(user), nil
}

func (r *memoryUserRepository) List(ctx context.Context, limit, offset int) ([]*entity.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })

	page := paginate(len(all), limit, offset)
	out := make([]*entity.User, 0, page.end-page.start)
	for _, u := range all[page.start:page.end] {
		out = append(out, cloneUser(u))
	}
	return out, int64(len(all)), nil
}

func (r *memoryUserRepository) SetAdmin(ctx context.Context, username string, isAdmin bool) error {
	return r.mutate(username, func(user *entity.User) error {
		user.IsAdmin = isAdmin
		return nil
	})
}

func (r *memoryUserRepository) Delete(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; !ok {
		return errors.NotFound("User", nil)
	}
	delete(r.users, username)
	return nil
}

func (r *memoryUserRepository) AddReview(ctx context.Context, username string, review entity.UserReview) error {
	return r.mutate(username, func(user *entity.User) error {
		user.Reviews = append(user.Reviews, review)
		return nil
	})
}

func (r *memoryUserRepository) UpdateReview(ctx context.Context, username, reviewID string, patch entity.ReviewPatch) error {
	return r.mutate(username, func(user *entity.User) error {
		idx := user.FindReview(reviewID)
		if idx < 0 {
			return errors.NotFound("Review", nil)
		}
		patch.ApplyToUser(&user.Reviews[idx])
		return nil
	})
}

func (r *memoryUserRepository) RemoveReview(ctx context.Context, username, reviewID string) (bool, error) {
	removed := false
	err := r.mutate(username, func(user *entity.User) error {
		idx := user.FindReview(reviewID)
		if idx < 0 {
			return nil
		}
		user.Reviews = append(user.Reviews[:idx], user.Reviews[idx+1:]...)
		removed = true
		return nil
	})
	return removed, err
}

func (r *memoryUserRepository) RemoveReviewsFor(ctx context.Context, username, itemID string) (int, error) {
	removed := 0
	err := r.mutate(username, func(user *entity.User) error {
		kept := user.Reviews[:0]
		for _, rv := range user.Reviews {
			if rv.ItemID == itemID {
				removed++
				continue
			}
			kept = append(kept, rv)
		}
		user.Reviews = kept
		return nil
	})
	return removed, err
}

func (r *memoryUserRepository) Recalculate(ctx context.Context, username string, aggregate rating.AggregateFunc) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return 0, errors.NotFound("User", nil)
	}

	entries := make([]map[string]interface{}, len(user.Reviews))
	for i, rv := range user.Reviews {
		entries[i] = map[string]interface{}{rating.Field: rv.Rating}
	}
	user.AverageRating = aggregate(entries)
	user.UpdatedAt = time.Now()
	return user.AverageRating, nil
}

func (r *memoryUserRepository) mutate(username string, fn func(user *entity.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[username]
	if !ok {
		return errors.NotFound("User", nil)
	}

	working := cloneUser(stored)
	if err := fn(working); err != nil {
		return err
	}
	working.ReviewCount = len(working.Reviews)
	working.UpdatedAt = time.Now()
	r.users[username] = working
	return nil
}

func cloneUser(user *entity.User) *entity.User {
	c := *user
	c.Reviews = append([]entity.UserReview(nil), user.Reviews...)
	return &c
}
