// Package store declares the persistence contracts used by the services.
// Implementations live in mongostore (MongoDB) and memory (in-process).
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"billgen/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// BillFilter selects bills. Zero values mean "no constraint". The billDate
// range is half-open: [BillDateFrom, BillDateTo).
type BillFilter struct {
	OwnerID      *primitive.ObjectID
	Statuses     []string
	Search       string
	BillDateFrom *time.Time
	BillDateTo   *time.Time
	Skip         int64
	Limit        int64
}

// BillPatch lists the fields an update may set. Nil fields are left alone.
type BillPatch struct {
	Customer       *models.Customer
	BillDate       *time.Time
	DueDate        *time.Time
	Items          *[]models.BillItem
	Subtotal       *float64
	TaxRate        *float64
	TaxAmount      *float64
	Discount       *float64
	GrandTotal     *float64
	Status         *string
	Notes          *string
	PaymentDetails *models.PaymentDetails
	UpdatedAt      time.Time
}

// BillStore persists bills. Listing is always ordered newest createdAt first.
type BillStore interface {
	InsertBill(ctx context.Context, bill *models.Bill) error
	FindBillByID(ctx context.Context, id primitive.ObjectID) (*models.Bill, error)
	FindBills(ctx context.Context, filter BillFilter) ([]models.Bill, error)
	CountBills(ctx context.Context, filter BillFilter) (int64, error)
	SumGrandTotal(ctx context.Context, filter BillFilter) (float64, error)
	UpdateBill(ctx context.Context, id primitive.ObjectID, patch BillPatch) (*models.Bill, error)
	DeleteBill(ctx context.Context, id primitive.ObjectID) error
	// LatestBillNumber returns the lexicographically greatest bill number
	// starting with prefix, or "" when there is none.
	LatestBillNumber(ctx context.Context, prefix string) (string, error)
}

// SequenceStore keeps named counters that only move forward.
type SequenceStore interface {
	CurrentSequence(ctx context.Context, key string) (int, error)
	// RaiseSequence lifts the counter to at least floor, creating it if needed.
	RaiseSequence(ctx context.Context, key string, floor int) error
	// IncrementSequence atomically adds one and returns the new value.
	IncrementSequence(ctx context.Context, key string) (int, error)
}

// ClientFilter selects clients; a nil OwnerID returns every client.
type ClientFilter struct {
	OwnerID *primitive.ObjectID
}

type ClientStore interface {
	InsertClient(ctx context.Context, client *models.Client) error
	FindClients(ctx context.Context, filter ClientFilter) ([]models.Client, error)
}
