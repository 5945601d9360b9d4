// Package mongostore implements the store contracts on MongoDB.
package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection    = "users"
	BillsCollection    = "bills"
	ClientsCollection  = "clients"
	CountersCollection = "counters"
)

// Store wraps a database handle. Every call runs under its own timeout
// derived from the caller's context.
type Store struct {
	db      *mongo.Database
	timeout time.Duration
}

func New(db *mongo.Database, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Store{db: db, timeout: timeout}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return s.db.Client().Ping(checkCtx, readpref.Primary())
}
