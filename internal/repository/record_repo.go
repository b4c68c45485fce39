package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"formwoz/internal/model"
)

type RecordRepo interface {
	// Create stores the record, replacing any earlier record for the same
	// room. A room that is re-completed after an edit keeps one record.
	Create(ctx context.Context, record *model.Record) error
	GetByRoomCode(ctx context.Context, roomCode string) (*model.Record, error)
	List(ctx context.Context) ([]*model.Record, error)
}

type recordRepo struct {
	collection *mongo.Collection
}

func NewRecordRepo(db *mongo.Database) RecordRepo {
	return &recordRepo{
		collection: db.Collection("records"),
	}
}

func (r *recordRepo) Create(ctx context.Context, record *model.Record) error {
	if record.CompletedAt.IsZero() {
		record.CompletedAt = time.Now()
	}

	opts := options.Replace().SetUpsert(true)
	result, err := r.collection.ReplaceOne(ctx,
		bson.M{"roomCode": record.RoomCode}, record, opts)
	if err != nil {
		return err
	}
	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return nil
}

func (r *recordRepo) GetByRoomCode(ctx context.Context, roomCode string) (*model.Record, error) {
	var record model.Record
	err := r.collection.FindOne(ctx, bson.M{"roomCode": roomCode}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *recordRepo) List(ctx context.Context) ([]*model.Record, error) {
	opts := options.Find().SetSort(bson.M{"completedAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.Record
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
