package app

import (
	"context"

	"storefront/domain"
	"storefront/pkg/httperror"
)

type GetCommentsHandler struct {
	repository Repository
}

func NewGetCommentsHandler(repository Repository) *GetCommentsHandler {
	return &GetCommentsHandler{
		repository: repository,
	}
}

type GetCommentsRequest struct {
	ID       string `params:"id"`
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
}

type GetCommentsResponse struct {
	Comments   []domain.Comment `json:"comments"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

func (h *GetCommentsHandler) Handle(ctx context.Context, req *GetCommentsRequest) (*GetCommentsResponse, error) {
	page := max(req.Page, 1)
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	comments, err := h.repository.GetComments(ctx, req.ID, page, pageSize)
	if err != nil {
		return nil, httperror.InternalServerError(
			"comments.index.failed",
			"Comments repository failed to retrieve comments",
			nil,
		)
	}

	totalItems, err := h.repository.CountComments(ctx, req.ID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"comments.count_comments.failed",
			"Failed to count comments",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetCommentsResponse{
		Comments:   comments,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}
