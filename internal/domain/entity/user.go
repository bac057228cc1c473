package entity

import (
	"time"
)

type User struct {
	ID           string `json:"id" firestore:"id"`
	Username     string `json:"username" firestore:"username"`
	PasswordHash string `json:"-" firestore:"passwordHash"`
	IsAdmin      bool   `json:"is_admin" firestore:"isAdmin"`

	// AverageRating is the mean rating this user has given.
	AverageRating float64      `json:"average_rating" firestore:"averageRating"`
	ReviewCount   int          `json:"review_count" firestore:"reviewCount"`
	Reviews       []UserReview `json:"reviews" firestore:"reviews"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) FindReview(reviewID string) int {
	for idx, r := range u.Reviews {
		if r.ID == reviewID {
			return idx
		}
	}
	return -1
}

// ReviewedItems lists the distinct item ids this user has reviewed.
func (u *User) ReviewedItems() []string {
	seen := make(map[string]struct{}, len(u.Reviews))
	var ids []string
	for _, r := range u.Reviews {
		if _, ok := seen[r.ItemID]; ok {
			continue
		}
		seen[r.ItemID] = struct{}{}
		ids = append(ids, r.ItemID)
	}
	return ids
}

// UserReview is the copy of a review embedded in the reviewing user.
type UserReview struct {
	ID        string    `json:"id" firestore:"id"`
	ItemID    string    `json:"item_id" firestore:"itemId"`
	ItemName  string    `json:"item_name" firestore:"itemName"`
	Rating    int       `json:"rating" firestore:"rating"`
	Comment   string    `json:"comment" firestore:"comment"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
