package app

import (
	"context"
	"time"

	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateItemHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type CreateItemRequest struct {
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	Sold      bool            `json:"sold"`
	ImageURL  *string         `json:"imageUrl,omitempty" validate:"omitempty,url"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
}

type CreateItemResponse struct {
	Item domain.Item `json:"item"`
}

func NewCreateItemHandler(repository Repository, eventPublisher events.Publisher) *CreateItemHandler {
	return &CreateItemHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (e CreateItemHandler) Handle(ctx context.Context, req *CreateItemRequest) (*CreateItemResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"item.create.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"item.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	item, err := e.repository.CreateItem(ctx, domain.Item{
		Name:      req.Name,
		Price:     req.Price,
		Sold:      req.Sold,
		ImageURL:  req.ImageURL,
		CreatedAt: createdAt,
	})
	if err != nil {
		return nil, httperror.InternalServerError(
			"item.create.create_failed",
			"An error occurred while creating the item",
			[]string{
				err.Error(),
			},
		)
	}

	e.publishEvent(ctx, item)

	return &CreateItemResponse{
		Item: item,
	}, nil
}

func (e CreateItemHandler) publishEvent(ctx context.Context, item domain.Item) {
	if e.eventPublisher == nil {
		return
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "storefront",
	}

	event := events.NewEvent(
		events.ItemCreatedEvent,
		events.EventVersionV1,
		events.ItemCreatedPayload{
			ID:        item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Sold:      item.Sold,
			ImageURL:  item.ImageURL,
			CreatedAt: item.CreatedAt,
		},
		headers,
	)

	if err := e.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish item.created event",
			zap.String("itemId", item.ID),
			zap.Error(err),
		)
	}
}
