package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"storefront/domain"

	"golang.org/x/crypto/bcrypt"
)

// Classified failures per the sign-in/sign-up contract. Callers pick
// messaging off these; anything else is treated as unknown.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrNetworkFailure     = errors.New("auth: backend unreachable")
)

// UserStore is the slice of the repository the service needs.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error)
}

// Session is the principal handed back on successful sign-in/sign-up.
type Session struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	store  UserStore
	tokens *TokenManager
}

func NewService(store UserStore, tokens *TokenManager) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
	}
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, Classify(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	return s.newSession(user)
}

func (s *Service) SignUp(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, email, string(hash))
	if err != nil {
		if isUniqueViolation(err) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, Classify(err)
	}

	return s.newSession(user)
}

func (s *Service) newSession(user domain.User) (Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("issuing token: %w", err)
	}

	return Session{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Classify folds transport-level failures into ErrNetworkFailure so
// the presentation layer can tell "check your connection" apart from
// "wrong password". Unrecognized errors pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %s", ErrNetworkFailure, netErr.Error())
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrNetworkFailure, err.Error())
	}

	return err
}

func isUniqueViolation(err error) bool {
	// lib/pq surfaces constraint violations with SQLSTATE 23505.
	return err != nil && strings.Contains(err.Error(), "23505")
}
