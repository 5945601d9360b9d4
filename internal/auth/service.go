// Package auth handles account registration, credential checks and bearer
// token verification.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"billgen/internal/apperr"
	"billgen/internal/logger"
	"billgen/internal/models"
	"billgen/internal/store"
)

const invalidCredentials = "Invalid credentials"

// Session is returned by a successful signup or login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type Service struct {
	users      store.UserStore
	tokens     *TokenManager
	bcryptCost int
	dummyHash  string // compared on unknown emails so every failed login runs bcrypt
	log        zerolog.Logger
}

func NewService(users store.UserStore, tokens *TokenManager, bcryptCost int) *Service {
	log := logger.WithComponent("auth")
	dummy, err := hashPassword("billgen-unknown-account", bcryptCost)
	if err != nil {
		log.Error().Err(err).Msg("dummy password hash failed")
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
		log:        log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperr.Validation("Name, email and password are required")
	}
	if len(password) > maxPasswordBytes {
		return nil, apperr.Validation("Password must be at most 72 bytes")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("User already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal("user lookup failed", err)
	}

	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal("password hashing failed", err)
	}

	now := time.Now()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, apperr.Internal("user insert failed", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal("token generation failed", err)
	}

	s.log.Info().Str("user_id", user.ID.Hex()).Msg("user signed up")
	return &Session{Token: token, User: user}, nil
}

// Login reports unknown emails and wrong passwords identically.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			checkPassword(s.dummyHash, password)
			s.log.Warn().Msg("login failed: unknown email")
			return nil, apperr.Authentication(invalidCredentials)
		}
		return nil, apperr.Internal("user lookup failed", err)
	}
	if !checkPassword(user.PasswordHash, password) {
		s.log.Warn().Str("user_id", user.ID.Hex()).Msg("login failed: wrong password")
		return nil, apperr.Authentication(invalidCredentials)
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal("token generation failed", err)
	}

	s.log.Info().Str("user_id", user.ID.Hex()).Msg("user logged in")
	return &Session{Token: token, User: user}, nil
}

// Verify returns nil for any token that does not verify.
func (s *Service) Verify(token string) *Identity {
	identity, err := s.tokens.Parse(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("token rejected")
		return nil
	}
	return identity
}

// Authorize reads an "Authorization: Bearer <token>" header.
func (s *Service) Authorize(r *http.Request) *Identity {
	token, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil
	}
	return s.Verify(token)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", false
	}
	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (s *Service) Me(ctx context.Context, identity *Identity) (*models.User, error) {
	if identity == nil {
		return nil, apperr.Authentication("Not authenticated")
	}
	user, err := s.users.GetUserByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Authentication("Not authenticated")
		}
		return nil, apperr.Internal("user lookup failed", err)
	}
	return user, nil
}

// Promote changes a user's role. It is only reachable from the CLI.
func (s *Service) Promote(ctx context.Context, email, role string) error {
	if !models.ValidRole(role) {
		return apperr.Validation("Unknown role", role)
	}
	email = normalizeEmail(email)
	if err := s.users.UpdateUserRole(ctx, email, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("role update failed", err)
	}
	s.log.Info().Str("email", email).Str("role", role).Msg("user role changed")
	return nil
}
