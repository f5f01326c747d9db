package gen

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is a Store backed by a MongoDB collection of person documents.
// Each document follows the bson tags of [Person], with the person id as _id.
//
// Link order is the order stored in the document arrays, which MongoDB
// preserves, so MongoStore satisfies the Store determinism contract.
type MongoStore struct {
	coll *mongo.Collection
}

// MongoConfig configures a MongoStore connection.
type MongoConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string // database name
	Collection string // collection of person documents
	Timeout    time.Duration
}

// DefaultMongoTimeout bounds connection establishment.
const DefaultMongoTimeout = 10 * time.Second

// NewMongoStore connects to MongoDB and returns a store over the configured
// collection. The caller should Close the store when done.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultMongoTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{coll: client.Database(cfg.Database).Collection(cfg.Collection)}, nil
}

// NewMongoStoreWithCollection wraps an existing collection.
// Useful for tests and callers that manage their own client.
func NewMongoStoreWithCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}

// PersonByID returns the person document, or nil if the id is unknown.
func (s *MongoStore) PersonByID(ctx context.Context, id string) (*Person, error) {
	var p Person
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find person %s: %w", id, err)
	}
	return &p, nil
}

// ParentsOf returns the parent ids of the person, in stored order.
func (s *MongoStore) ParentsOf(ctx context.Context, id string) ([]string, error) {
	return s.links(ctx, id, func(p *Person) []string { return p.Parents })
}

// ChildrenOf returns the child ids of the person, in stored order.
func (s *MongoStore) ChildrenOf(ctx context.Context, id string) ([]string, error) {
	return s.links(ctx, id, func(p *Person) []string { return p.Children })
}

// SpousesOf returns the spouse ids of the person, in stored order.
func (s *MongoStore) SpousesOf(ctx context.Context, id string) ([]string, error) {
	return s.links(ctx, id, func(p *Person) []string { return p.Spouses })
}

func (s *MongoStore) links(ctx context.Context, id string, pick func(*Person) []string) ([]string, error) {
	p, err := s.PersonByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	return pick(p), nil
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
