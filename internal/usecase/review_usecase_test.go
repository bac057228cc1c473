package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memrepo "marketplace/internal/adapter/repository"
	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/rating"
	"marketplace/internal/domain/repository"
	"marketplace/pkg/errors"
)

// countingItemRepo records how often each item is re-aggregated.
type countingItemRepo struct {
	repository.ItemRepository
	recalcs map[string]int
}

func (r *countingItemRepo) Recalculate(ctx context.Context, itemID string, aggregate rating.AggregateFunc) (float64, error) {
	r.recalcs[itemID]++
	return r.ItemRepository.Recalculate(ctx, itemID, aggregate)
}

// countingUserRepo records re-aggregations and can fail the mirror write.
type countingUserRepo struct {
	repository.UserRepository
	recalcs   map[string]int
	addErr    error
	deleteErr error
}

func (r *countingUserRepo) Recalculate(ctx context.Context, username string, aggregate rating.AggregateFunc) (float64, error) {
	r.recalcs[username]++
	return r.UserRepository.Recalculate(ctx, username, aggregate)
}

func (r *countingUserRepo) AddReview(ctx context.Context, username string, review entity.UserReview) error {
	if r.addErr != nil {
		return r.addErr
	}
	return r.UserRepository.AddReview(ctx, username, review)
}

func (r *countingUserRepo) Delete(ctx context.Context, username string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.UserRepository.Delete(ctx, username)
}

type ledgerFixture struct {
	ctx   context.Context
	items *countingItemRepo
	users *countingUserRepo
	uc    *ReviewUseCase
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	f := &ledgerFixture{
		ctx:   context.Background(),
		items: &countingItemRepo{ItemRepository: memrepo.NewMemoryItemRepository(), recalcs: map[string]int{}},
		users: &countingUserRepo{UserRepository: memrepo.NewMemoryUserRepository(), recalcs: map[string]int{}},
	}
	f.uc = NewReviewUseCase(f.items, f.users)

	seq := 0
	f.uc.newID = func() string {
		seq++
		return fmt.Sprintf("r%d", seq)
	}
	return f
}

func (f *ledgerFixture) addUser(t *testing.T, usernames ...string) {
	t.Helper()
	for _, username := range usernames {
		require.NoError(t, f.users.Create(f.ctx, &entity.User{Username: username}))
	}
}

func (f *ledgerFixture) addItem(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, f.items.Create(f.ctx, &entity.Item{
		ID:     id,
		Name:   name,
		Seller: "seller",
		Type:   entity.ItemTypeOther,
	}))
}

func (f *ledgerFixture) submit(t *testing.T, itemID, username string, score int) *entity.Review {
	t.Helper()
	review, err := f.uc.Submit(f.ctx, SubmitReviewInput{ItemID: itemID, Username: username, Rating: score})
	require.NoError(t, err)
	return review
}

func (f *ledgerFixture) item(t *testing.T, id string) *entity.Item {
	t.Helper()
	item, err := f.items.GetByID(f.ctx, id)
	require.NoError(t, err)
	return item
}

func (f *ledgerFixture) user(t *testing.T, username string) *entity.User {
	t.Helper()
	user, err := f.users.GetByUsername(f.ctx, username)
	require.NoError(t, err)
	return user
}

func (f *ledgerFixture) resetCounts() {
	f.items.recalcs = map[string]int{}
	f.users.recalcs = map[string]int{}
}

func TestSubmitCreatesMirroredCopies(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice")
	f.addItem(t, "i1", "Lamp")

	review, err := f.uc.Submit(f.ctx, SubmitReviewInput{ItemID: "i1", Username: "alice", Rating: 8, Comment: "bright"})
	require.NoError(t, err)
	assert.Equal(t, "r1", review.ID)
	assert.Equal(t, "Lamp", review.ItemName)

	item := f.item(t, "i1")
	require.Len(t, item.Reviews, 1)
	assert.Equal(t, entity.ItemReview{ID: "r1", Username: "alice", Rating: 8, Comment: "bright", CreatedAt: review.CreatedAt}, item.Reviews[0])
	assert.Equal(t, 1, item.ReviewCount)
	assert.Equal(t, 8.0, item.Rating)

	user := f.user(t, "alice")
	require.Len(t, user.Reviews, 1)
	assert.Equal(t, entity.UserReview{ID: "r1", ItemID: "i1", ItemName: "Lamp", Rating: 8, Comment: "bright", CreatedAt: review.CreatedAt}, user.Reviews[0])
	assert.Equal(t, 1, user.ReviewCount)
	assert.Equal(t, 8.0, user.AverageRating)

	assert.Equal(t, 1, f.items.recalcs["i1"])
	assert.Equal(t, 1, f.users.recalcs["alice"])
}

func TestSubmitTwoReviewersAveragesItem(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice", "bob")
	f.addItem(t, "i1", "Lamp")

	f.submit(t, "i1", "alice", 8)
	f.submit(t, "i1", "bob", 4)

	item := f.item(t, "i1")
	assert.Equal(t, 6.0, item.Rating)
	assert.Equal(t, 2, item.ReviewCount)
	assert.Equal(t, 8.0, f.user(t, "alice").AverageRating)
	assert.Equal(t, 4.0, f.user(t, "bob").AverageRating)
}

func TestSubmitReplacesPreviousReview(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice")
	f.addItem(t, "i1", "Lamp")

	first := f.submit(t, "i1", "alice", 8)
	f.resetCounts()
	second := f.submit(t, "i1", "alice", 2)

	assert.NotEqual(t, first.ID, second.ID)

	item := f.item(t, "i1")
	require.Len(t, item.Reviews, 1)
	assert.Equal(t, second.ID, item.Reviews[0].ID)
	assert.Equal(t, 1, item.ReviewCount)
	assert.Equal(t, 2.0, item.Rating)

	user := f.user(t, "alice")
	require.Len(t, user.Reviews, 1)
	assert.Equal(t, second.ID, user.Reviews[0].ID)
	assert.Equal(t, 1, user.ReviewCount)
	assert.Equal(t, 2.0, user.AverageRating)

	// The replacement is aggregated once per side, not once for the removal
	// and again for the insert.
	assert.Equal(t, 1, f.items.recalcs["i1"])
	assert.Equal(t, 1, f.users.recalcs["alice"])

	_, err := f.uc.GetReview(f.ctx, first.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestSubmitValidation(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice")
	f.addItem(t, "i1", "Lamp")

	tests := []struct {
		name  string
		input SubmitReviewInput
		code  string
	}{
		{"rating too low", SubmitReviewInput{ItemID: "i1", Username: "alice", Rating: 0}, errors.CodeValidation},
		{"rating too high", SubmitReviewInput{ItemID: "i1", Username: "alice", Rating: 11}, errors.CodeValidation},
		{"missing item id", SubmitReviewInput{Username: "alice", Rating: 5}, errors.CodeValidation},
		{"missing username", SubmitReviewInput{ItemID: "i1", Rating: 5}, errors.CodeValidation},
		{"unknown item", SubmitReviewInput{ItemID: "nope", Username: "alice", Rating: 5}, errors.CodeNotFound},
		{"unknown user", SubmitReviewInput{ItemID: "i1", Username: "ghost", Rating: 5}, errors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Submit(f.ctx, tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}

	assert.Empty(t, f.item(t, "i1").Reviews)
	assert.Empty(t, f.user(t, "alice").Reviews)
}

func TestSubmitMirrorFailureKeepsItemSide(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice")
	f.addItem(t, "i1", "Lamp")
	f.users.addErr = errors.Internal("Failed to update user", nil)

	_, err := f.uc.Submit(f.ctx, SubmitReviewInput{ItemID: "i1", Username: "alice", Rating: 9})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeInternal))

	// Nothing is rolled back; the item side stays consistent with itself.
	item := f.item(t, "i1")
	assert.Equal(t, 1, item.ReviewCount)
	assert.Equal(t, 9.0, item.Rating)
	assert.Empty(t, f.user(t, "alice").Reviews)
}

func TestDeleteRemovesBothCopies(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice", "bob", "carol")
	f.addItem(t, "i1", "Lamp")

	f.submit(t, "i1", "alice", 10)
	middle := f.submit(t, "i1", "bob", 7)
	f.submit(t, "i1", "carol", 3)

	require.NoError(t, f.uc.Delete(f.ctx, middle.ID))

	item := f.item(t, "i1")
	assert.Equal(t, 2, item.ReviewCount)
	assert.Equal(t, 6.5, item.Rating)
	assert.Equal(t, -1, item.FindReview(middle.ID))

	bob := f.user(t, "bob")
	assert.Empty(t, bob.Reviews)
	assert.Equal(t, 0, bob.ReviewCount)
	assert.Equal(t, 0.0, bob.AverageRating)

	err := f.uc.Delete(f.ctx, middle.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteToleratesMissingUserMirror(t *testing.T) {
	f := newLedgerFixture(t)
	f.addItem(t, "i1", "Lamp")
	require.NoError(t, f.items.AddReview(f.ctx, "i1", entity.ItemReview{ID: "orphan", Username: "ghost", Rating: 4}))

	require.NoError(t, f.uc.Delete(f.ctx, "orphan"))

	item := f.item(t, "i1")
	assert.Empty(t, item.Reviews)
	assert.Equal(t, 0.0, item.Rating)
	assert.Zero(t, f.users.recalcs["ghost"])
}

func TestUpdateReaggregatesOnlyOnRatingChange(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice", "bob")
	f.addItem(t, "i1", "Lamp")

	review := f.submit(t, "i1", "alice", 8)
	f.submit(t, "i1", "bob", 4)
	f.resetCounts()

	comment := "dimmer than expected"
	updated, err := f.uc.Update(f.ctx, review.ID, UpdateReviewInput{Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, comment, updated.Comment)
	assert.Equal(t, 8, updated.Rating)
	assert.Zero(t, f.items.recalcs["i1"])
	assert.Zero(t, f.users.recalcs["alice"])
	assert.Equal(t, comment, f.user(t, "alice").Reviews[0].Comment)

	same := 8
	_, err = f.uc.Update(f.ctx, review.ID, UpdateReviewInput{Rating: &same})
	require.NoError(t, err)
	assert.Zero(t, f.items.recalcs["i1"])

	lower := 2
	updated, err = f.uc.Update(f.ctx, review.ID, UpdateReviewInput{Rating: &lower})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, comment, updated.Comment)
	assert.Equal(t, 1, f.items.recalcs["i1"])
	assert.Equal(t, 1, f.users.recalcs["alice"])

	assert.Equal(t, 3.0, f.item(t, "i1").Rating)
	alice := f.user(t, "alice")
	assert.Equal(t, 2.0, alice.AverageRating)
	assert.Equal(t, 2, alice.Reviews[0].Rating)
	assert.Equal(t, review.ID, alice.Reviews[0].ID)
}

func TestUpdateValidation(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice")
	f.addItem(t, "i1", "Lamp")
	review := f.submit(t, "i1", "alice", 8)

	_, err := f.uc.Update(f.ctx, review.ID, UpdateReviewInput{})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	tooHigh := 11
	_, err = f.uc.Update(f.ctx, review.ID, UpdateReviewInput{Rating: &tooHigh})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	score := 5
	_, err = f.uc.Update(f.ctx, "missing", UpdateReviewInput{Rating: &score})
	assert.True(t, errors.IsNotFound(err))

	assert.Equal(t, 8, f.item(t, "i1").Reviews[0].Rating)
}

func TestDeleteAllForItemAggregatesEachUserOnce(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice", "bob")
	f.addItem(t, "i1", "Lamp")
	f.addItem(t, "i2", "Desk")

	f.submit(t, "i1", "alice", 10)
	f.submit(t, "i1", "bob", 2)
	f.submit(t, "i2", "alice", 6)

	// A legacy duplicate: alice holds two entries for i1 on both sides.
	require.NoError(t, f.items.AddReview(f.ctx, "i1", entity.ItemReview{ID: "legacy", Username: "alice", Rating: 4}))
	require.NoError(t, f.users.AddReview(f.ctx, "alice", entity.UserReview{ID: "legacy", ItemID: "i1", ItemName: "Lamp", Rating: 4}))
	f.resetCounts()

	result, err := f.uc.DeleteAllForItem(f.ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.RemovedReviews)
	assert.Equal(t, []string{"alice", "bob"}, result.Affected)

	assert.Equal(t, 1, f.users.recalcs["alice"])
	assert.Equal(t, 1, f.users.recalcs["bob"])
	assert.Zero(t, f.items.recalcs["i1"])

	_, err = f.items.GetByID(f.ctx, "i1")
	assert.True(t, errors.IsNotFound(err))

	alice := f.user(t, "alice")
	require.Len(t, alice.Reviews, 1)
	assert.Equal(t, "i2", alice.Reviews[0].ItemID)
	assert.Equal(t, 1, alice.ReviewCount)
	assert.Equal(t, 6.0, alice.AverageRating)

	bob := f.user(t, "bob")
	assert.Empty(t, bob.Reviews)
	assert.Equal(t, 0.0, bob.AverageRating)
}

func TestDeleteAllForItemSkipsMissingReviewers(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice")
	f.addItem(t, "i1", "Lamp")
	f.submit(t, "i1", "alice", 7)
	require.NoError(t, f.items.AddReview(f.ctx, "i1", entity.ItemReview{ID: "orphan", Username: "ghost", Rating: 1}))

	result, err := f.uc.DeleteAllForItem(f.ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, result.Affected)

	_, err = f.items.GetByID(f.ctx, "i1")
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteAllForUserAggregatesEachItemOnce(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice", "bob")
	f.addItem(t, "i1", "Lamp")
	f.addItem(t, "i2", "Desk")

	f.submit(t, "i1", "alice", 10)
	f.submit(t, "i1", "bob", 4)
	f.submit(t, "i2", "alice", 9)
	f.resetCounts()

	result, err := f.uc.DeleteAllForUser(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, result.RemovedReviews)
	assert.ElementsMatch(t, []string{"i1", "i2"}, result.Affected)

	assert.Equal(t, 1, f.items.recalcs["i1"])
	assert.Equal(t, 1, f.items.recalcs["i2"])

	_, err = f.users.GetByUsername(f.ctx, "alice")
	assert.True(t, errors.IsNotFound(err))

	i1 := f.item(t, "i1")
	assert.Equal(t, 1, i1.ReviewCount)
	assert.Equal(t, 4.0, i1.Rating)

	i2 := f.item(t, "i2")
	assert.Equal(t, 0, i2.ReviewCount)
	assert.Equal(t, 0.0, i2.Rating)
}

func TestDeleteAllForUserReaggregatesWhenRecordDeleteFails(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice")
	f.addItem(t, "i1", "Lamp")
	f.submit(t, "i1", "alice", 10)
	f.resetCounts()
	f.users.deleteErr = errors.Internal("Failed to delete user", nil)

	result, err := f.uc.DeleteAllForUser(f.ctx, "alice")
	require.Error(t, err)
	assert.Equal(t, 1, result.RemovedReviews)

	// The item lost its entry, so it is re-aggregated regardless.
	assert.Equal(t, 1, f.items.recalcs["i1"])
	assert.Equal(t, 0.0, f.item(t, "i1").Rating)
}

func TestListReviews(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice", "bob")
	f.addItem(t, "i1", "Lamp")
	f.addItem(t, "i2", "Desk")

	r1 := f.submit(t, "i1", "alice", 10)
	f.submit(t, "i1", "bob", 4)
	f.submit(t, "i2", "alice", 9)

	itemReviews, err := f.uc.ListItemReviews(f.ctx, "i1")
	require.NoError(t, err)
	require.Len(t, itemReviews, 2)
	assert.Equal(t, "Lamp", itemReviews[0].ItemName)

	userReviews, err := f.uc.ListUserReviews(f.ctx, "alice")
	require.NoError(t, err)
	require.Len(t, userReviews, 2)
	assert.Equal(t, "alice", userReviews[1].Username)
	assert.Equal(t, "i2", userReviews[1].ItemID)

	got, err := f.uc.GetReview(f.ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, r1.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "i1", got.ItemID)

	_, err = f.uc.ListItemReviews(f.ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
}
