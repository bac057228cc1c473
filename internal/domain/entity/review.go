package entity

import (
	"time"
)

// Review is the logical record behind an ItemReview/UserReview pair.
type Review struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Username  string    `json:"username"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemCopy returns the entry stored on the item side.
func (r *Review) ItemCopy() ItemReview {
	return ItemReview{
		ID:        r.ID,
		Username:  r.Username,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// UserCopy returns the entry stored on the user side.
func (r *Review) UserCopy() UserReview {
	return UserReview{
		ID:        r.ID,
		ItemID:    r.ItemID,
		ItemName:  r.ItemName,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func ReviewFromItem(item *Item, entry ItemReview) *Review {
	return &Review{
		ID:        entry.ID,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Username:  entry.Username,
		Rating:    entry.Rating,
		Comment:   entry.Comment,
		CreatedAt: entry.CreatedAt,
	}
}

// ReviewPatch carries the optional fields of a review update.
type ReviewPatch struct {
	Rating  *int
	Comment *string
}

func (p ReviewPatch) Empty() bool {
	return p.Rating == nil && p.Comment == nil
}

func (p ReviewPatch) ApplyToItem(r *ItemReview) {
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Comment != nil {
		r.Comment = *p.Comment
	}
}

func (p ReviewPatch) ApplyToUser(r *UserReview) {
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Comment != nil {
		r.Comment = *p.Comment
	}
}
