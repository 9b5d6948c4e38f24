package app

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type CreateCommentHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewCreateCommentHandler(repository Repository, eventPublisher events.Publisher) *CreateCommentHandler {
	return &CreateCommentHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type CreateCommentRequest struct {
	ItemID  string `params:"id" validate:"required,uuid"`
	Content string `json:"content" validate:"required"`
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

type CreateCommentResponse struct {
	Comment domain.Comment `json:"comment"`
}

func (c *CreateCommentHandler) Handle(ctx context.Context, req *CreateCommentRequest) (*CreateCommentResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"comments.create.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"comments.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	if strings.TrimSpace(req.Content) == "" {
		return nil, httperror.BadRequest(
			"comments.create.empty_content",
			"Comment must not be empty",
			nil,
		)
	}

	item, err := c.repository.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound("comments.create.not_found", "Item not found", nil)
		}

		return nil, httperror.InternalServerError("comments.create.internal_error", "Failed to get item", nil)
	}

	authorName, _ := ctx.Value("UserEmail").(string)
	rating := domain.ClampRating(req.Rating)

	comment, err := c.repository.CreateComment(ctx, item.ID, req.Content, rating, authorName)
	if err != nil {
		return nil, httperror.InternalServerError("comments.create.internal_error", "Failed to create comment", nil)
	}

	c.publishEvent(ctx, comment)

	return &CreateCommentResponse{
		Comment: comment,
	}, nil
}

func (c *CreateCommentHandler) publishEvent(ctx context.Context, comment domain.Comment) {
	if c.eventPublisher == nil {
		return
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "storefront",
	}

	event := events.NewEvent(
		events.ItemCommentCreatedEvent,
		events.EventVersionV1,
		events.ItemCommentCreatedPayload{
			ID:         comment.ID,
			ItemID:     comment.ItemID,
			Content:    comment.Content,
			Rating:     comment.Rating,
			AuthorName: comment.AuthorName,
			CreatedAt:  comment.CreatedAt,
		},
		headers,
	)

	if err := c.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish item.comment.created event",
			zap.String("commentId", comment.ID),
			zap.Error(err),
		)
	}
}
