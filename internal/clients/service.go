// Package clients manages the per-user client address book.
package clients

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"billgen/internal/apperr"
	"billgen/internal/auth"
	"billgen/internal/logger"
	"billgen/internal/models"
	"billgen/internal/store"
)

type ClientInput struct {
	Name    string `json:"name" binding:"required"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Service struct {
	clients store.ClientStore
	now     func() time.Time
	log     zerolog.Logger
}

func NewService(clients store.ClientStore) *Service {
	return &Service{
		clients: clients,
		now:     time.Now,
		log:     logger.WithComponent("clients"),
	}
}

// List returns the caller's clients, or every client for admins, newest first.
func (s *Service) List(ctx context.Context, identity *auth.Identity) ([]models.Client, error) {
	if identity == nil {
		return nil, apperr.Authentication("Not authorized")
	}

	filter := store.ClientFilter{}
	if !identity.IsAdmin() {
		owner := identity.ID
		filter.OwnerID = &owner
	}

	clients, err := s.clients.FindClients(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("client query failed", err)
	}
	return clients, nil
}

func (s *Service) Create(ctx context.Context, identity *auth.Identity, in ClientInput) (*models.Client, error) {
	if identity == nil {
		return nil, apperr.Authentication("Not authorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("Client validation failed", "name is required")
	}

	now := s.now()
	owner := identity.ID
	client := &models.Client{
		Name:      strings.TrimSpace(in.Name),
		Company:   in.Company,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		UserID:    &owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.clients.InsertClient(ctx, client); err != nil {
		return nil, apperr.Internal("client insert failed", err)
	}

	s.log.Info().Str("client_id", client.ID.Hex()).Str("user_id", owner.Hex()).Msg("client created")
	return client, nil
}
