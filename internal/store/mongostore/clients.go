package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"billgen/internal/models"
	"billgen/internal/store"
)

func (s *Store) InsertClient(ctx context.Context, client *models.Client) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.Collection(ClientsCollection).InsertOne(ctx, client)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		client.ID = id
	}
	return nil
}

func (s *Store) FindClients(ctx context.Context, filter store.ClientFilter) ([]models.Client, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.db.Collection(ClientsCollection).Find(ctx, clientFilterDocument(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	clients := make([]models.Client, 0)
	if err := cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}
