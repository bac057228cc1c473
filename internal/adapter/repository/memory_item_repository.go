package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/rating"
	"marketplace/internal/domain/repository"
	"marketplace/pkg/errors"
)

// memoryItemRepository keeps items in process. Each method holds the lock for
// its whole body, which gives the same per-document atomicity Firestore does.
type memoryItemRepository struct {
	mu    sync.RWMutex
	items map[string]*entity.Item
}

func NewMemoryItemRepository() repository.ItemRepository {
	return &memoryItemRepository{
		items: make(map[string]*entity.Item),
	}
}

func (r *memoryItemRepository) Create(ctx context.Context, item *entity.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if _, exists := r.items[item.ID]; exists {
		return errors.Conflict("Item already exists")
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	item.SyncReviewIndex()

	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *memoryItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	return cloneItem(item), nil
}

func (r *memoryItemRepository) List(ctx context.Context, filter repository.ItemFilter, limit, offset int) ([]*entity.Item, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := strings.ToLower(filter.Query)
	var matched []*entity.Item
	for _, item := range r.items {
		if filter.Type != "" && item.Type != filter.Type {
			continue
		}
		if filter.Seller != "" && item.Seller != filter.Seller {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		matched = append(matched, item)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page := paginate(len(matched), limit, offset)
	out := make([]*entity.Item, 0, page.end-page.start)
	for _, item := range matched[page.start:page.end] {
		out = append(out, cloneItem(item))
	}
	return out, total, nil
}

func (r *memoryItemRepository) Update(ctx context.Context, item *entity.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[item.ID]
	if !ok {
		return errors.NotFound("Item", nil)
	}
	stored.Name = item.Name
	stored.Description = item.Description
	stored.Price = item.Price
	stored.ImageURL = item.ImageURL
	stored.Type = item.Type
	stored.Attributes = cloneAttributes(item.Attributes)
	stored.UpdatedAt = time.Now()
	item.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *memoryItemRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return errors.NotFound("Item", nil)
	}
	delete(r.items, id)
	return nil
}

func (r *memoryItemRepository) FindByReviewID(ctx context.Context, reviewID string) (*entity.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.FindReview(reviewID) >= 0 {
			return cloneItem(item), nil
		}
	}
	return nil, errors.NotFound("Review", nil)
}

func (r *memoryItemRepository) AddReview(ctx context.Context, itemID string, review entity.ItemReview) error {
	return r.mutate(itemID, func(item *entity.Item) error {
		item.Reviews = append(item.Reviews, review)
		return nil
	})
}

func (r *memoryItemRepository) UpdateReview(ctx context.Context, itemID, reviewID string, patch entity.ReviewPatch) error {
	return r.mutate(itemID, func(item *entity.Item) error {
		idx := item.FindReview(reviewID)
		if idx < 0 {
			return errors.NotFound("Review", nil)
		}
		patch.ApplyToItem(&item.Reviews[idx])
		return nil
	})
}

func (r *memoryItemRepository) RemoveReview(ctx context.Context, itemID, reviewID string) (bool, error) {
	removed := false
	err := r.mutate(itemID, func(item *entity.Item) error {
		idx := item.FindReview(reviewID)
		if idx < 0 {
			return nil
		}
		item.Reviews = append(item.Reviews[:idx], item.Reviews[idx+1:]...)
		removed = true
		return nil
	})
	return removed, err
}

func (r *memoryItemRepository) RemoveReviewsBy(ctx context.Context, itemID, username string) (int, error) {
	removed := 0
	err := r.mutate(itemID, func(item *entity.Item) error {
		kept := item.Reviews[:0]
		for _, rv := range item.Reviews {
			if rv.Username == username {
				removed++
				continue
			}
			kept = append(kept, rv)
		}
		item.Reviews = kept
		return nil
	})
	return removed, err
}

func (r *memoryItemRepository) Recalculate(ctx context.Context, itemID string, aggregate rating.AggregateFunc) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return 0, errors.NotFound("Item", nil)
	}

	entries := make([]map[string]interface{}, len(item.Reviews))
	for i, rv := range item.Reviews {
		entries[i] = map[string]interface{}{rating.Field: rv.Rating}
	}
	item.Rating = aggregate(entries)
	item.UpdatedAt = time.Now()
	return item.Rating, nil
}

func (r *memoryItemRepository) mutate(itemID string, fn func(item *entity.Item) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[itemID]
	if !ok {
		return errors.NotFound("Item", nil)
	}

	working := cloneItem(stored)
	if err := fn(working); err != nil {
		return err
	}
	working.SyncReviewIndex()
	working.UpdatedAt = time.Now()
	r.items[itemID] = working
	return nil
}

func cloneItem(item *entity.Item) *entity.Item {
	c := *item
	c.Attributes = cloneAttributes(item.Attributes)
	c.Reviews = append([]entity.ItemReview(nil), item.Reviews...)
	c.ReviewIDs = append([]string(nil), item.ReviewIDs...)
	return &c
}

func cloneAttributes(attrs map[string]interface{}) map[string]interface{} {
	if attrs == nil {
		return nil
	}
	c := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		c[k] = v
	}
	return c
}

type window struct {
	start, end int
}

func paginate(n, limit, offset int) window {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return window{start: offset, end: end}
}
