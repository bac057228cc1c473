package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/rating"
	"marketplace/internal/domain/repository"
	"marketplace/pkg/errors"
)

// Users are stored under their username so that document creation enforces
// username uniqueness.
type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) doc(username string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(username)
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Reviews == nil {
		user.Reviews = []entity.UserReview{}
	}
	user.ReviewCount = len(user.Reviews)

	_, err := r.doc(user.Username).Create(ctx, user)
	err = translate(err, "User", "create user")
	if errors.Is(err, errors.CodeConflict) {
		return errors.Conflict("Username already taken")
	}
	return err
}

func (r *firestoreUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	doc, err := r.doc(username).Get(ctx)
	if err != nil {
		return nil, translate(err, "User", "get user")
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

func (r *firestoreUserRepository) List(ctx context.Context, limit, offset int) ([]*entity.User, int64, error) {
	query := r.client.Collection(usersCollection).Query

	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count users", err)
	}

	query = query.OrderBy("username", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var users []*entity.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate users", err)
		}
		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			return nil, 0, errors.Internal("Failed to parse user data", err)
		}
		users = append(users, &user)
	}

	return users, total, nil
}

func (r *firestoreUserRepository) SetAdmin(ctx context.Context, username string, isAdmin bool) error {
	_, err := r.doc(username).Update(ctx, []firestore.Update{
		{Path: "isAdmin", Value: isAdmin},
		{Path: "updatedAt", Value: time.Now()},
	})
	return translate(err, "User", "update user")
}

func (r *firestoreUserRepository) Delete(ctx context.Context, username string) error {
	_, err := r.doc(username).Delete(ctx, firestore.Exists)
	return translate(err, "User", "delete user")
}

func (r *firestoreUserRepository) AddReview(ctx context.Context, username string, review entity.UserReview) error {
	return r.mutate(ctx, username, func(user *entity.User) error {
		user.Reviews = append(user.Reviews, review)
		return nil
	})
}

func (r *firestoreUserRepository) UpdateReview(ctx context.Context, username, reviewID string, patch entity.ReviewPatch) error {
	return r.mutate(ctx, username, func(user *entity.User) error {
		idx := user.FindReview(reviewID)
		if idx < 0 {
			return errors.NotFound("Review", nil)
		}
		patch.ApplyToUser(&user.Reviews[idx])
		return nil
	})
}

func (r *firestoreUserRepository) RemoveReview(ctx context.Context, username, reviewID string) (bool, error) {
	var removed bool
	err := r.mutate(ctx, username, func(user *entity.User) error {
		removed = false
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

func (r *firestoreUserRepository) RemoveReviewsFor(ctx context.Context, username, itemID string) (int, error) {
	var removed int
	err := r.mutate(ctx, username, func(user *entity.User) error {
		removed = 0
		kept := make([]entity.UserReview, 0, len(user.Reviews))
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

func (r *firestoreUserRepository) Recalculate(ctx context.Context, username string, aggregate rating.AggregateFunc) (float64, error) {
	ref := r.doc(username)

	var value float64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return translate(err, "User", "get user")
		}
		value = aggregate(rawEntries(doc.Data(), "reviews"))
		return tx.Update(ref, []firestore.Update{
			{Path: "averageRating", Value: value},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		return 0, translate(err, "User", "recalculate user rating")
	}
	return value, nil
}

func (r *firestoreUserRepository) mutate(ctx context.Context, username string, fn func(user *entity.User) error) error {
	ref := r.doc(username)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return translate(err, "User", "get user")
		}

		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			return errors.Internal("Failed to parse user data", err)
		}
		if err := fn(&user); err != nil {
			return err
		}
		if user.Reviews == nil {
			user.Reviews = []entity.UserReview{}
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "reviews", Value: user.Reviews},
			{Path: "reviewCount", Value: len(user.Reviews)},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	return translate(err, "User", "update user reviews")
}
