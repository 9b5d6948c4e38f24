package app

import (
	"context"
	"errors"
	"time"

	"storefront/internal/auth"
	"storefront/pkg/httperror"

	"github.com/go-playground/validator/v10"
)

type SignInHandler struct {
	auth *auth.Service
}

func NewSignInHandler(authService *auth.Service) *SignInHandler {
	return &SignInHandler{
		auth: authService,
	}
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignInResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *SignInHandler) Handle(ctx context.Context, req *SignInRequest) (*SignInResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"auth.sign_in.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"auth.sign_in.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	session, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, mapAuthError("sign_in", err)
	}

	return &SignInResponse{
		UserID:    session.UserID,
		Email:     session.Email,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// mapAuthError keeps the credential/network distinction so clients can
// show tailored messages.
func mapAuthError(operation string, err error) *httperror.Error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return httperror.Unauthorized(
			"auth."+operation+".invalid_credentials",
			"Invalid email or password",
			nil,
		)
	case errors.Is(err, auth.ErrEmailTaken):
		return httperror.BadRequest(
			"auth."+operation+".email_taken",
			"An account with this email already exists",
			nil,
		)
	case errors.Is(err, auth.ErrNetworkFailure):
		return httperror.ServiceUnavailable(
			"auth."+operation+".network_failure",
			"Authentication backend unreachable, check your connection",
			nil,
		)
	default:
		return httperror.InternalServerError(
			"auth."+operation+".failed",
			"Authentication failed",
			nil,
		)
	}
}
