package entity

import (
	"time"
)

type Item struct {
	ID          string                 `json:"id" firestore:"id"`
	Name        string                 `json:"name" firestore:"name"`
	Description string                 `json:"description" firestore:"description"`
	Price       float64                `json:"price" firestore:"price"`
	Seller      string                 `json:"seller" firestore:"seller"`
	ImageURL    string                 `json:"image_url,omitempty" firestore:"imageUrl,omitempty"`
	Type        ItemType               `json:"type" firestore:"type"`
	Attributes  map[string]interface{} `json:"attributes,omitempty" firestore:"attributes,omitempty"`

	// Derived from Reviews; only the review ledger writes these.
	Rating      float64      `json:"rating" firestore:"rating"`
	ReviewCount int          `json:"review_count" firestore:"reviewCount"`
	Reviews     []ItemReview `json:"reviews" firestore:"reviews"`
	ReviewIDs   []string     `json:"-" firestore:"reviewIds"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// FindReview returns the index of the embedded review with the given id, or -1.
func (i *Item) FindReview(reviewID string) int {
	for idx, r := range i.Reviews {
		if r.ID == reviewID {
			return idx
		}
	}
	return -1
}

// FindReviewBy returns the index of the review written by username, or -1.
func (i *Item) FindReviewBy(username string) int {
	for idx, r := range i.Reviews {
		if r.Username == username {
			return idx
		}
	}
	return -1
}

// Reviewers lists the distinct usernames with a review on this item, in
// review order.
func (i *Item) Reviewers() []string {
	seen := make(map[string]struct{}, len(i.Reviews))
	var names []string
	for _, r := range i.Reviews {
		if _, ok := seen[r.Username]; ok {
			continue
		}
		seen[r.Username] = struct{}{}
		names = append(names, r.Username)
	}
	return names
}

// SyncReviewIndex recomputes the stored id index and count from Reviews.
func (i *Item) SyncReviewIndex() {
	ids := make([]string, len(i.Reviews))
	for idx, r := range i.Reviews {
		ids[idx] = r.ID
	}
	i.ReviewIDs = ids
	i.ReviewCount = len(i.Reviews)
}

// ItemReview is the copy of a review embedded in the reviewed item.
type ItemReview struct {
	ID        string    `json:"id" firestore:"id"`
	Username  string    `json:"username" firestore:"username"`
	Rating    int       `json:"rating" firestore:"rating"`
	Comment   string    `json:"comment" firestore:"comment"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
