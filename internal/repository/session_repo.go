package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"codepractice/internal/model"
)

// ErrDuplicateSession is returned by Create when the id is already taken
var ErrDuplicateSession = errors.New("session id already exists")

// SessionRepo owns every mutation of a session record. Each mutating
// method is a single atomic storage operation.
type SessionRepo interface {
	// Create inserts a new session
	Create(ctx context.Context, session *model.Session) error
	// GetByID returns nil, nil when the session does not exist
	GetByID(ctx context.Context, id string) (*model.Session, error)
	// AdvanceFrom increments the problem index only if the session is active
	// and its index still equals from. It reports whether the increment happened.
	AdvanceFrom(ctx context.Context, id string, from int) (bool, error)
	// Deactivate marks an active session inactive and reports whether it did
	Deactivate(ctx context.Context, id string, at time.Time) (bool, error)
	// EnsureSchema creates tables or indexes the store needs
	EnsureSchema(ctx context.Context) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a MongoDB-backed session repository
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("sessions"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.collection.InsertOne(ctx, session)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateSession
	}
	return err
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) AdvanceFrom(ctx context.Context, id string, from int) (bool, error) {
	filter := bson.M{
		"_id":                 id,
		"active":              true,
		"currentProblemIndex": from,
	}
	update := bson.M{"$inc": bson.M{"currentProblemIndex": 1}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *sessionRepo) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	filter := bson.M{"_id": id, "active": true}
	update := bson.M{"$set": bson.M{"active": false, "endedAt": at}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *sessionRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "active", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("active_createdAt"),
	})
	return err
}
