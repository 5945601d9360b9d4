package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"billgen/internal/models"
)

//go:generate mockgen -source=users.go -destination=mocks/mock_users.go -package=mocks

// UserStore persists user accounts. Emails are compared as stored, callers
// normalise them first.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateUserRole(ctx context.Context, email, role string) error
}
