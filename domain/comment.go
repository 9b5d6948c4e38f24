package domain

import "time"

type Comment struct {
	ID         string    `db:"id" json:"id"`
	ItemID     string    `db:"item_id" json:"itemId"`
	Content    string    `db:"content" json:"content"`
	Rating     int       `db:"rating" json:"rating"`
	AuthorName string    `db:"author_name" json:"authorName"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

const DefaultRating = 5

// ClampRating maps the unset zero value to the default and bounds
// everything else to [1,5]. Enforced client side only.
func ClampRating(rating int) int {
	if rating == 0 {
		return DefaultRating
	}
	if rating < 1 {
		return 1
	}
	if rating > 5 {
		return 5
	}
	return rating
}
