package app

import (
	"context"

	"storefront/domain"
)

type Repository interface {
	Close() error
	CreateItem(ctx context.Context, item domain.Item) (domain.Item, error)
	GetItems(ctx context.Context, limit, offset int) ([]domain.Item, error)
	CountItems(ctx context.Context) (int, error)
	GetItem(ctx context.Context, id string) (domain.Item, error)
	SetItemImage(ctx context.Context, itemID, imageURL string) (domain.Item, error)
	GetComments(ctx context.Context, itemID string, page, pageSize int) ([]domain.Comment, error)
	CountComments(ctx context.Context, itemID string) (int, error)
	CreateComment(ctx context.Context, itemID, content string, rating int, authorName string) (domain.Comment, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error)
}

// BlobStore is the slice of the object storage the upload handler
// needs.
type BlobStore interface {
	Upload(key string, data []byte) error
	Delete(key string) error
	ResolveURL(key string) string
}
