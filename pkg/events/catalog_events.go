package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Domain constants
const (
	CatalogDomain   = "catalog"
	CatalogExchange = "storefront.catalog"
)

// Event names
const (
	ItemCreatedEvent        = "item.created"
	ItemImageUploadedEvent  = "item.image.uploaded"
	ItemCommentCreatedEvent = "item.comment.created"
)

// Event versions
const (
	EventVersionV1 = "v1"
)

// ItemCreatedPayload represents the payload for item.created event
type ItemCreatedPayload struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Sold      bool            `json:"sold"`
	ImageURL  *string         `json:"imageUrl"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ItemImageUploadedPayload represents the payload for item.image.uploaded event
type ItemImageUploadedPayload struct {
	ItemID    string    `json:"itemId"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// ItemCommentCreatedPayload represents the payload for item.comment.created event
type ItemCommentCreatedPayload struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"itemId"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}
