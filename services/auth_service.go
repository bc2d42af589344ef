package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/store"
	"github.com/benjibook/api-go/utils"
	"github.com/benjibook/api-go/utils/log"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type AuthResult struct {
	TokenType   string       `json:"token_type"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// GoogleIdentity is a Google account whose code exchange already succeeded.
type GoogleIdentity struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

type AuthService struct {
	store    store.Store
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(st store.Store, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{store: st, secret: secret, tokenTTL: tokenTTL}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account that still has to complete onboarding.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, BadRequest("email is required")
	}
	if len(password) < minPasswordLength {
		return nil, BadRequest("password must be at least 6 characters long")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Internal("could not hash password", err)
	}
	hash := string(hashed)

	user := &models.User{Email: email, PasswordHash: &hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, BadRequest("email already registered")
		}
		return nil, Internal("failed to create user", err)
	}
	return s.IssueToken(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, Internal("failed to load user", err)
	}
	if user.PasswordHash == nil {
		return nil, Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, Unauthorized("invalid credentials")
	}
	return s.IssueToken(user)
}

// GoogleLogin signs in the account linked to the Google id, links an
// existing account with the same email, or creates a new one.
func (s *AuthService) GoogleLogin(ctx context.Context, identity GoogleIdentity) (*AuthResult, error) {
	if identity.ID == "" {
		return nil, Unauthorized("invalid google identity")
	}

	user, err := s.store.GetUserByGoogleID(ctx, identity.ID)
	if err == nil {
		return s.IssueToken(user)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, Internal("failed to load user", err)
	}

	// New and linking accounts are keyed by email.
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, Unauthorized("google account has no email")
	}
	user, err = s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		user.GoogleID = &identity.ID
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, Internal("failed to link google account", err)
		}
		log.Log.WithField("user_id", user.ID).Info("linked google account")
	case errors.Is(err, store.ErrNotFound):
		user = &models.User{
			Email:    email,
			GoogleID: &identity.ID,
			Name:     identity.Name,
			Image:    identity.Picture,
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, Internal("failed to create user", err)
		}
	default:
		return nil, Internal("failed to load user", err)
	}
	return s.IssueToken(user)
}

func (s *AuthService) IssueToken(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := utils.GenerateToken(user.ID, s.secret, s.tokenTTL)
	if err != nil {
		return nil, Internal("could not generate token", err)
	}
	return &AuthResult{TokenType: "Bearer", AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}
