package app

import (
	"context"
	"time"

	"storefront/internal/auth"
	"storefront/pkg/httperror"

	"github.com/go-playground/validator/v10"
)

type SignUpHandler struct {
	auth *auth.Service
}

func NewSignUpHandler(authService *auth.Service) *SignUpHandler {
	return &SignUpHandler{
		auth: authService,
	}
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignUpResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *SignUpHandler) Handle(ctx context.Context, req *SignUpRequest) (*SignUpResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"auth.sign_up.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"auth.sign_up.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	session, err := h.auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, mapAuthError("sign_up", err)
	}

	return &SignUpResponse{
		UserID:    session.UserID,
		Email:     session.Email,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
