package registration

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection registrations are stored in.
const Collection = "registrations"

// MongoStore stores registrations in MongoDB.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, verifies the server answers and ensures
// the collection's indexes exist.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := NewMongoStoreFromClient(client, database)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client. Close disconnects it.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, coll: client.Database(database).Collection(Collection)}
}

// EnsureIndexes creates the unique code and event+email indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uniqueCode", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniqueCode_unique"),
		},
		{
			Keys:    bson.D{{Key: "event.eventId", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("event_email_unique"),
		},
		{
			Keys: bson.D{{Key: "event.eventId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, r *Registration) error {
	_, err := s.coll.InsertOne(ctx, r)
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "uniqueCode") {
			return ErrDuplicateCode
		}
		return ErrAlreadyRegistered
	}
	return err
}

func (s *MongoStore) ByCode(ctx context.Context, code string) (*Registration, error) {
	return s.findOne(ctx, bson.M{"uniqueCode": code})
}

func (s *MongoStore) ByEventEmail(ctx context.Context, eventID, email string) (*Registration, error) {
	return s.findOne(ctx, bson.M{"event.eventId": eventID, "email": email})
}

func (s *MongoStore) CodeExists(ctx context.Context, code string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"uniqueCode": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MongoStore) MarkAttended(ctx context.Context, code string, at time.Time) (*Registration, bool, error) {
	// Only the first check-in stamps attendedAt; the filter makes it atomic.
	stamp, err := s.coll.UpdateOne(ctx,
		bson.M{"uniqueCode": code, "attendedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"attendedAt": at}})
	if err != nil {
		return nil, false, err
	}
	var r Registration
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"uniqueCode": code},
		bson.M{"$set": bson.M{"participationStatus": StatusAttended}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}
	return &r, stamp.ModifiedCount == 1, nil
}

func (s *MongoStore) List(ctx context.Context, eventID string) ([]*Registration, error) {
	filter := bson.M{}
	if eventID != "" {
		filter["event.eventId"] = eventID
	}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "uniqueCode", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []*Registration{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*Registration, error) {
	var r Registration
	err := s.coll.FindOne(ctx, filter).Decode(&r)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

var _ Store = (*MongoStore)(nil)
