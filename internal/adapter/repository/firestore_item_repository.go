package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/rating"
	"marketplace/internal/domain/repository"
	"marketplace/pkg/errors"
)

type firestoreItemRepository struct {
	client *firestore.Client
}

func NewFirestoreItemRepository(client *firestore.Client) repository.ItemRepository {
	return &firestoreItemRepository{
		client: client,
	}
}

func (r *firestoreItemRepository) Create(ctx context.Context, item *entity.Item) error {
	if item.ID == "" {
		doc := r.client.Collection(itemsCollection).NewDoc()
		item.ID = doc.ID
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if item.Reviews == nil {
		item.Reviews = []entity.ItemReview{}
	}
	item.SyncReviewIndex()

	_, err := r.client.Collection(itemsCollection).Doc(item.ID).Create(ctx, item)
	return translate(err, "Item", "create item")
}

func (r *firestoreItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	doc, err := r.client.Collection(itemsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, translate(err, "Item", "get item")
	}

	var item entity.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Internal("Failed to parse item data", err)
	}

	return &item, nil
}

func (r *firestoreItemRepository) List(ctx context.Context, filter repository.ItemFilter, limit, offset int) ([]*entity.Item, int64, error) {
	query := r.client.Collection(itemsCollection).Query
	if filter.Type != "" {
		query = query.Where("type", "==", string(filter.Type))
	}
	if filter.Seller != "" {
		query = query.Where("seller", "==", filter.Seller)
	}

	// Firestore has no substring match, so name searches filter in process.
	if filter.Query != "" {
		return r.search(ctx, query, strings.ToLower(filter.Query), limit, offset)
	}

	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count items", err)
	}

	query = query.OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var items []*entity.Item
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate items", err)
		}
		var item entity.Item
		if err := doc.DataTo(&item); err != nil {
			return nil, 0, errors.Internal("Failed to parse item data", err)
		}
		items = append(items, &item)
	}

	return items, total, nil
}

func (r *firestoreItemRepository) search(ctx context.Context, query firestore.Query, needle string, limit, offset int) ([]*entity.Item, int64, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to search items", err)
	}

	var matched []*entity.Item
	for _, doc := range docs {
		var item entity.Item
		if err := doc.DataTo(&item); err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(item.Name), needle) {
			matched = append(matched, &item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := paginate(len(matched), limit, offset)
	return matched[page.start:page.end], int64(len(matched)), nil
}

func (r *firestoreItemRepository) Update(ctx context.Context, item *entity.Item) error {
	item.UpdatedAt = time.Now()

	_, err := r.client.Collection(itemsCollection).Doc(item.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: item.Name},
		{Path: "description", Value: item.Description},
		{Path: "price", Value: item.Price},
		{Path: "imageUrl", Value: item.ImageURL},
		{Path: "type", Value: string(item.Type)},
		{Path: "attributes", Value: item.Attributes},
		{Path: "updatedAt", Value: item.UpdatedAt},
	})
	return translate(err, "Item", "update item")
}

func (r *firestoreItemRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(itemsCollection).Doc(id).Delete(ctx, firestore.Exists)
	return translate(err, "Item", "delete item")
}

func (r *firestoreItemRepository) FindByReviewID(ctx context.Context, reviewID string) (*entity.Item, error) {
	iter := r.client.Collection(itemsCollection).
		Where("reviewIds", "array-contains", reviewID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Review", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query review", err)
	}

	var item entity.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Internal("Failed to parse item data", err)
	}
	return &item, nil
}

func (r *firestoreItemRepository) AddReview(ctx context.Context, itemID string, review entity.ItemReview) error {
	return r.mutate(ctx, itemID, func(item *entity.Item) error {
		item.Reviews = append(item.Reviews, review)
		return nil
	})
}

func (r *firestoreItemRepository) UpdateReview(ctx context.Context, itemID, reviewID string, patch entity.ReviewPatch) error {
	return r.mutate(ctx, itemID, func(item *entity.Item) error {
		idx := item.FindReview(reviewID)
		if idx < 0 {
			return errors.NotFound("Review", nil)
		}
		patch.ApplyToItem(&item.Reviews[idx])
		return nil
	})
}

func (r *firestoreItemRepository) RemoveReview(ctx context.Context, itemID, reviewID string) (bool, error) {
	var removed bool
	err := r.mutate(ctx, itemID, func(item *entity.Item) error {
		removed = false
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

func (r *firestoreItemRepository) RemoveReviewsBy(ctx context.Context, itemID, username string) (int, error) {
	var removed int
	err := r.mutate(ctx, itemID, func(item *entity.Item) error {
		removed = 0
		kept := make([]entity.ItemReview, 0, len(item.Reviews))
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

func (r *firestoreItemRepository) Recalculate(ctx context.Context, itemID string, aggregate rating.AggregateFunc) (float64, error) {
	ref := r.client.Collection(itemsCollection).Doc(itemID)

	var value float64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return translate(err, "Item", "get item")
		}
		value = aggregate(rawEntries(doc.Data(), "reviews"))
		return tx.Update(ref, []firestore.Update{
			{Path: "rating", Value: value},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		return 0, translate(err, "Item", "recalculate item rating")
	}
	return value, nil
}

// mutate applies fn to the stored item inside a transaction and writes back
// the review list together with its id index and count.
func (r *firestoreItemRepository) mutate(ctx context.Context, itemID string, fn func(item *entity.Item) error) error {
	ref := r.client.Collection(itemsCollection).Doc(itemID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return translate(err, "Item", "get item")
		}

		var item entity.Item
		if err := doc.DataTo(&item); err != nil {
			return errors.Internal("Failed to parse item data", err)
		}
		if err := fn(&item); err != nil {
			return err
		}
		if item.Reviews == nil {
			item.Reviews = []entity.ItemReview{}
		}
		item.SyncReviewIndex()

		return tx.Update(ref, []firestore.Update{
			{Path: "reviews", Value: item.Reviews},
			{Path: "reviewIds", Value: item.ReviewIDs},
			{Path: "reviewCount", Value: item.ReviewCount},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	return translate(err, "Item", "update item reviews")
}
