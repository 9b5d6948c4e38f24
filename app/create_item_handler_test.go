package app

import (
	"context"
	"errors"
	"testing"

	"storefront/pkg/events"
	"storefront/pkg/httperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItemHandler(t *testing.T) {
	repo := newMemRepository()
	publisher := &memPublisher{}
	handler := NewCreateItemHandler(repo, publisher)

	res, err := handler.Handle(context.Background(), &CreateItemRequest{
		Name:  "Book A",
		Price: decimal.RequireFromString("9.99"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Item.ID)
	assert.Equal(t, "Book A", res.Item.Name)
	assert.True(t, res.Item.Price.Equal(decimal.RequireFromString("9.99")))
	assert.Nil(t, res.Item.ImageURL)
	assert.False(t, res.Item.Sold)
	assert.False(t, res.Item.CreatedAt.IsZero(), "missing timestamp is stamped server side")

	assert.Equal(t, []string{events.ItemCreatedEvent}, publisher.eventNames())
}

func TestCreateItemHandlerValidation(t *testing.T) {
	handler := NewCreateItemHandler(newMemRepository(), nil)

	_, err := handler.Handle(context.Background(), &CreateItemRequest{
		Price: decimal.RequireFromString("9.99"),
	})
	require.Error(t, err)

	var httpErr *httperror.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "item.create.validation_failed", httpErr.Code)
}

func TestCreateItemHandlerRepositoryFailure(t *testing.T) {
	repo := newMemRepository()
	repo.failCreate = errors.New("insert failed")
	publisher := &memPublisher{}
	handler := NewCreateItemHandler(repo, publisher)

	_, err := handler.Handle(context.Background(), &CreateItemRequest{
		Name:  "Book A",
		Price: decimal.RequireFromString("9.99"),
	})
	require.Error(t, err)

	var httpErr *httperror.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "item.create.create_failed", httpErr.Code)
	assert.Empty(t, publisher.eventNames(), "no event for a failed write")
}

func TestGetItemsHandlerPagination(t *testing.T) {
	repo := newMemRepository()
	handler := NewGetItemsHandler(repo)
	create := NewCreateItemHandler(repo, nil)

	for i := 0; i < 25; i++ {
		_, err := create.Handle(context.Background(), &CreateItemRequest{
			Name:  "item",
			Price: decimal.New(int64(i+1), 0),
		})
		require.NoError(t, err)
	}

	res, err := handler.Handle(context.Background(), &GetItemsRequest{Page: 3, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 25, res.TotalItems)
	assert.Equal(t, 3, res.TotalPages)
	assert.Len(t, res.Items, 5)
}

func TestGetItemsHandlerDefaults(t *testing.T) {
	handler := NewGetItemsHandler(newMemRepository())

	res, err := handler.Handle(context.Background(), &GetItemsRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.PageSize)
	assert.Empty(t, res.Items)
}
