package mongostore

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"billgen/internal/models"
	"billgen/internal/store"
)

func (s *Store) InsertBill(ctx context.Context, bill *models.Bill) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.Collection(BillsCollection).InsertOne(ctx, bill)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		bill.ID = id
	}
	return nil
}

func (s *Store) FindBillByID(ctx context.Context, id primitive.ObjectID) (*models.Bill, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var bill models.Bill
	err := s.db.Collection(BillsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&bill)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (s *Store) FindBills(ctx context.Context, filter store.BillFilter) ([]models.Bill, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Skip > 0 {
		opts.SetSkip(filter.Skip)
	}
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := s.db.Collection(BillsCollection).Find(ctx, billFilterDocument(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bills := make([]models.Bill, 0)
	if err := cursor.All(ctx, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func (s *Store) CountBills(ctx context.Context, filter store.BillFilter) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.db.Collection(BillsCollection).CountDocuments(ctx, billFilterDocument(filter))
}

func (s *Store) SumGrandTotal(ctx context.Context, filter store.BillFilter) (float64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: billFilterDocument(filter)}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$grandTotal"},
		}}},
	}

	cursor, err := s.db.Collection(BillsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (s *Store) UpdateBill(ctx context.Context, id primitive.ObjectID, patch store.BillPatch) (*models.Bill, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated models.Bill
	err := s.db.Collection(BillsCollection).
		FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": billPatchDocument(patch)},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).
		Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteBill(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.Collection(BillsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) LatestBillNumber(ctx context.Context, prefix string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var bill models.Bill
	err := s.db.Collection(BillsCollection).FindOne(
		ctx,
		bson.M{"billNumber": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}},
		options.FindOne().
			SetSort(bson.D{{Key: "billNumber", Value: -1}}).
			SetProjection(bson.M{"billNumber": 1}),
	).Decode(&bill)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return bill.BillNumber, nil
}
