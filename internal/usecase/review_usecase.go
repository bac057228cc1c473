package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/rating"
	"marketplace/internal/domain/repository"
	"marketplace/pkg/errors"
	"marketplace/pkg/logger"
)

// ReviewUseCase keeps the two embedded copies of every review (one on the
// item, one on the reviewing user) in step and re-aggregates both sides.
//
// Each logical operation is two sequential document writes, item side first.
// Firestore only guarantees atomicity per document, so a failure between the
// two writes leaves the copies diverged until the next write touching them.
// Nothing is rolled back.
type ReviewUseCase struct {
	itemRepo repository.ItemRepository
	userRepo repository.UserRepository

	now   func() time.Time
	newID func() string
}

func NewReviewUseCase(
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
) *ReviewUseCase {
	return &ReviewUseCase{
		itemRepo: itemRepo,
		userRepo: userRepo,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

type SubmitReviewInput struct {
	ItemID   string
	Username string
	Rating   int
	Comment  string
}

type UpdateReviewInput struct {
	Rating  *int
	Comment *string
}

// CascadeResult describes what a cascade detached from the surviving side.
type CascadeResult struct {
	RemovedReviews int      `json:"removed_reviews"`
	Affected       []string `json:"affected"`
}

// Submit records a review of itemID by username. A previous review by the same
// user on the same item is removed from both sides first and the new review
// gets a fresh id.
func (uc *ReviewUseCase) Submit(ctx context.Context, input SubmitReviewInput) (*entity.Review, error) {
	input.ItemID = strings.TrimSpace(input.ItemID)
	input.Username = strings.TrimSpace(input.Username)

	if input.ItemID == "" {
		return nil, errors.Validation("itemId is required")
	}
	if input.Username == "" {
		return nil, errors.Validation("username is required")
	}
	if !rating.Valid(input.Rating) {
		return nil, errors.Validation("rating must be between 1 and 10")
	}

	item, err := uc.itemRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.userRepo.GetByUsername(ctx, input.Username); err != nil {
		return nil, err
	}

	// At most one review per (user, item): detach the old pair without
	// re-aggregating, the single pass below covers it.
	if idx := item.FindReviewBy(input.Username); idx >= 0 {
		previous := item.Reviews[idx]
		if err := uc.detach(ctx, item.ID, input.Username, previous.ID); err != nil {
			return nil, err
		}
		logger.Debug("Replacing review %s by %s on item %s", previous.ID, input.Username, item.ID)
	}

	review := &entity.Review{
		ID:        uc.newID(),
		ItemID:    item.ID,
		ItemName:  item.Name,
		Username:  input.Username,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: uc.now(),
	}

	if err := uc.itemRepo.AddReview(ctx, item.ID, review.ItemCopy()); err != nil {
		return nil, err
	}
	if err := uc.userRepo.AddReview(ctx, review.Username, review.UserCopy()); err != nil {
		logger.LogMirrorDivergence(review.ID, "submit", err)
		uc.recalculateItemQuietly(ctx, item.ID)
		return nil, err
	}

	if err := uc.recalculateItem(ctx, item.ID); err != nil {
		return nil, err
	}
	if err := uc.recalculateUser(ctx, review.Username); err != nil {
		return nil, err
	}

	return review, nil
}

// Update changes the rating and/or comment of a review on both sides. Ratings
// are re-aggregated only when the rating value changed.
func (uc *ReviewUseCase) Update(ctx context.Context, reviewID string, input UpdateReviewInput) (*entity.Review, error) {
	patch := entity.ReviewPatch{Rating: input.Rating, Comment: input.Comment}
	if patch.Empty() {
		return nil, errors.Validation("rating or comment is required")
	}
	if input.Rating != nil && !rating.Valid(*input.Rating) {
		return nil, errors.Validation("rating must be between 1 and 10")
	}

	item, entry, err := uc.locate(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	ratingChanged := input.Rating != nil && *input.Rating != entry.Rating

	if err := uc.itemRepo.UpdateReview(ctx, item.ID, reviewID, patch); err != nil {
		return nil, err
	}

	userMirrored := true
	if err := uc.userRepo.UpdateReview(ctx, entry.Username, reviewID, patch); err != nil {
		logger.LogMirrorDivergence(reviewID, "update", err)
		if !errors.IsNotFound(err) {
			return nil, err
		}
		userMirrored = false
	}

	if ratingChanged {
		if err := uc.recalculateItem(ctx, item.ID); err != nil {
			return nil, err
		}
		if userMirrored {
			if err := uc.recalculateUser(ctx, entry.Username); err != nil {
				return nil, err
			}
		}
	}

	patch.ApplyToItem(&entry)
	return entity.ReviewFromItem(item, entry), nil
}

// Delete removes a review from both sides and re-aggregates both.
func (uc *ReviewUseCase) Delete(ctx context.Context, reviewID string) error {
	item, entry, err := uc.locate(ctx, reviewID)
	if err != nil {
		return err
	}

	removed, err := uc.itemRepo.RemoveReview(ctx, item.ID, reviewID)
	if err != nil {
		return err
	}
	if !removed {
		return errors.NotFound("Review", nil)
	}

	userMirrored := true
	if _, err := uc.userRepo.RemoveReview(ctx, entry.Username, reviewID); err != nil {
		logger.LogMirrorDivergence(reviewID, "delete", err)
		if !errors.IsNotFound(err) {
			uc.recalculateItemQuietly(ctx, item.ID)
			return err
		}
		userMirrored = false
	}

	if err := uc.recalculateItem(ctx, item.ID); err != nil {
		return err
	}
	if userMirrored {
		return uc.recalculateUser(ctx, entry.Username)
	}
	return nil
}

// DeleteAllForItem deletes an item after detaching every mirrored review from
// its reviewers. Each affected user is re-aggregated once, after the item
// record is gone. Detached reviews are not re-attached if the item delete
// fails.
func (uc *ReviewUseCase) DeleteAllForItem(ctx context.Context, itemID string) (*CascadeResult, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	result := &CascadeResult{Affected: []string{}}
	var cascadeErr error
	for _, username := range item.Reviewers() {
		n, err := uc.userRepo.RemoveReviewsFor(ctx, username, item.ID)
		if err != nil {
			if errors.IsNotFound(err) {
				logger.Warn("Reviewer %s of item %s no longer exists", username, item.ID)
				continue
			}
			cascadeErr = err
			break
		}
		result.RemovedReviews += n
		result.Affected = append(result.Affected, username)
	}

	if cascadeErr == nil {
		if err := uc.itemRepo.Delete(ctx, item.ID); err != nil {
			logger.Error("Failed to delete item %s after detaching %d reviews: %v", item.ID, result.RemovedReviews, err)
			cascadeErr = err
		}
	}

	for _, username := range result.Affected {
		if err := uc.recalculateUser(ctx, username); err != nil && cascadeErr == nil {
			cascadeErr = err
		}
	}

	return result, cascadeErr
}

// DeleteAllForUser is the user-side mirror of DeleteAllForItem.
func (uc *ReviewUseCase) DeleteAllForUser(ctx context.Context, username string) (*CascadeResult, error) {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	result := &CascadeResult{Affected: []string{}}
	var cascadeErr error
	for _, itemID := range user.ReviewedItems() {
		n, err := uc.itemRepo.RemoveReviewsBy(ctx, itemID, user.Username)
		if err != nil {
			if errors.IsNotFound(err) {
				logger.Warn("Item %s reviewed by %s no longer exists", itemID, user.Username)
				continue
			}
			cascadeErr = err
			break
		}
		result.RemovedReviews += n
		result.Affected = append(result.Affected, itemID)
	}

	if cascadeErr == nil {
		if err := uc.userRepo.Delete(ctx, user.Username); err != nil {
			logger.Error("Failed to delete user %s after detaching %d reviews: %v", user.Username, result.RemovedReviews, err)
			cascadeErr = err
		}
	}

	for _, itemID := range result.Affected {
		if err := uc.recalculateItem(ctx, itemID); err != nil && cascadeErr == nil {
			cascadeErr = err
		}
	}

	return result, cascadeErr
}

func (uc *ReviewUseCase) GetReview(ctx context.Context, reviewID string) (*entity.Review, error) {
	item, entry, err := uc.locate(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return entity.ReviewFromItem(item, entry), nil
}

func (uc *ReviewUseCase) ListItemReviews(ctx context.Context, itemID string) ([]*entity.Review, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	reviews := make([]*entity.Review, 0, len(item.Reviews))
	for _, entry := range item.Reviews {
		reviews = append(reviews, entity.ReviewFromItem(item, entry))
	}
	return reviews, nil
}

func (uc *ReviewUseCase) ListUserReviews(ctx context.Context, username string) ([]*entity.Review, error) {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	reviews := make([]*entity.Review, 0, len(user.Reviews))
	for _, entry := range user.Reviews {
		reviews = append(reviews, &entity.Review{
			ID:        entry.ID,
			ItemID:    entry.ItemID,
			ItemName:  entry.ItemName,
			Username:  user.Username,
			Rating:    entry.Rating,
			Comment:   entry.Comment,
			CreatedAt: entry.CreatedAt,
		})
	}
	return reviews, nil
}

// locate finds a review by id on the item side, which also yields its author.
func (uc *ReviewUseCase) locate(ctx context.Context, reviewID string) (*entity.Item, entity.ItemReview, error) {
	if strings.TrimSpace(reviewID) == "" {
		return nil, entity.ItemReview{}, errors.Validation("review id is required")
	}

	item, err := uc.itemRepo.FindByReviewID(ctx, reviewID)
	if err != nil {
		return nil, entity.ItemReview{}, err
	}
	idx := item.FindReview(reviewID)
	if idx < 0 {
		return nil, entity.ItemReview{}, errors.NotFound("Review", nil)
	}
	return item, item.Reviews[idx], nil
}

// detach removes both copies of a review without re-aggregating.
func (uc *ReviewUseCase) detach(ctx context.Context, itemID, username, reviewID string) error {
	if _, err := uc.itemRepo.RemoveReview(ctx, itemID, reviewID); err != nil {
		return err
	}
	if _, err := uc.userRepo.RemoveReview(ctx, username, reviewID); err != nil {
		logger.LogMirrorDivergence(reviewID, "replace", err)
		return err
	}
	return nil
}

func (uc *ReviewUseCase) recalculateItem(ctx context.Context, itemID string) error {
	value, err := uc.itemRepo.Recalculate(ctx, itemID, rating.Aggregate)
	if err != nil {
		return err
	}
	logger.Debug("Item %s rating is now %.1f", itemID, value)
	return nil
}

func (uc *ReviewUseCase) recalculateUser(ctx context.Context, username string) error {
	value, err := uc.userRepo.Recalculate(ctx, username, rating.Aggregate)
	if err != nil {
		return err
	}
	logger.Debug("User %s average rating is now %.1f", username, value)
	return nil
}

// recalculateItemQuietly is used on failure paths where the item side already
// changed and the caller is about to return another error.
func (uc *ReviewUseCase) recalculateItemQuietly(ctx context.Context, itemID string) {
	if err := uc.recalculateItem(ctx, itemID); err != nil {
		logger.Error("Failed to recalculate rating of item %s: %v", itemID, err)
	}
}
