package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"billgen/internal/models"
)

func (s *Store) CurrentSequence(ctx context.Context, key string) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var counter models.Counter
	err := s.db.Collection(CountersCollection).FindOne(ctx, bson.M{"_id": key}).Decode(&counter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (s *Store) RaiseSequence(ctx context.Context, key string, floor int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	update := bson.M{
		"$max": bson.M{"seq": floor},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.Update().SetUpsert(true)

	_, err := s.db.Collection(CountersCollection).UpdateOne(ctx, bson.M{"_id": key}, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// lost an upsert race; the document exists now
		_, err = s.db.Collection(CountersCollection).UpdateOne(ctx, bson.M{"_id": key}, update, opts)
	}
	return err
}

func (s *Store) IncrementSequence(ctx context.Context, key string) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var counter models.Counter
	err := s.db.Collection(CountersCollection).
		FindOneAndUpdate(
			ctx,
			bson.M{"_id": key},
			bson.M{
				"$inc": bson.M{"seq": 1},
				"$set": bson.M{"updatedAt": time.Now()},
			},
			options.FindOneAndUpdate().
				SetUpsert(true).
				SetReturnDocument(options.After),
		).
		Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}
