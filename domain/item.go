package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a catalog entry. ImageURL is nil until an upload has resolved
// to a durable URL; a persisted item never carries a device-local path.
type Item struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Sold      bool            `db:"sold" json:"sold"`
	ImageURL  *string         `db:"image_url" json:"imageUrl"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}
