package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"billgen/internal/logger"
	"billgen/internal/store/mongostore"
)

// EnsureIndexes creates every index the stores rely on. Failures are
// collected so one bad collection does not hide the others.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return errors.Join(
		EnsureUserIndexes(ctx, db),
		EnsureBillIndexes(ctx, db),
		EnsureClientIndexes(ctx, db),
	)
}

func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, mongostore.UsersCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	})
}

func EnsureBillIndexes(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, mongostore.BillsCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "billNumber", Value: 1}},
			Options: options.Index().SetName("billNumber_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("userId_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
		{
			Keys:    bson.D{{Key: "billDate", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("billDate_status"),
		},
	})
}

func EnsureClientIndexes(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, mongostore.ClientsCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("userId_createdAt"),
		},
	})
}

func createIndexes(ctx context.Context, db *mongo.Database, collection string, models []mongo.IndexModel) error {
	log := logger.WithComponent("database")

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("index creation failed")
		return err
	}
	log.Info().Str("collection", collection).Strs("indexes", names).Msg("indexes ensured")
	return nil
}
