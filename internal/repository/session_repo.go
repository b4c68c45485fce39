package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"formwoz/internal/model"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetByRoomCode(ctx context.Context, roomCode string) (*model.Session, error)
	UpdateSnapshot(ctx context.Context, roomCode string, snapshot []byte) error
	AppendMessages(ctx context.Context, roomCode string, messages ...model.Message) error
	SetStatus(ctx context.Context, roomCode string, status model.SessionStatus) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("sessions"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	if session.Messages == nil {
		session.Messages = []model.Message{}
	}

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

func (r *sessionRepo) GetByRoomCode(ctx context.Context, roomCode string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"roomCode": roomCode}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) UpdateSnapshot(ctx context.Context, roomCode string, snapshot []byte) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"roomCode": roomCode},
		bson.M{"$set": bson.M{"snapshot": snapshot}})
	return err
}

func (r *sessionRepo) AppendMessages(ctx context.Context, roomCode string, messages ...model.Message) error {
	if len(messages) == 0 {
		return nil
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"roomCode": roomCode},
		bson.M{"$push": bson.M{"messages": bson.M{"$each": messages}}})
	return err
}

func (r *sessionRepo) SetStatus(ctx context.Context, roomCode string, status model.SessionStatus) error {
	update := bson.M{"status": status}
	if status != model.SessionActive {
		update["endedAt"] = time.Now()
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"roomCode": roomCode},
		bson.M{"$set": update})
	return err
}
