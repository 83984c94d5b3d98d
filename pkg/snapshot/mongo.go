package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default MongoDB names.
const (
	DefaultDatabase   = "ghfolio"
	DefaultCollection = "snapshots"
)

// MongoStore keeps snapshots in a MongoDB collection. Old snapshots are not
// pruned; a TTL index on created_at can be added by the operator.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
	owned  bool
}

type mongoDoc struct {
	ID        string    `bson:"_id"`
	Kind      string    `bson:"kind"`
	Username  string    `bson:"username"`
	Payload   []byte    `bson:"payload"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoStore connects to uri, verifies the connection and ensures the
// lookup index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	s := NewMongoStoreFromCollection(client.Database(database).Collection(DefaultCollection))
	s.client = client
	s.owned = true
	if err := s.EnsureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromCollection wraps an existing collection. Close does not
// disconnect its client.
func NewMongoStoreFromCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll, now: time.Now}
}

// EnsureIndexes creates the (kind, username, created_at desc) index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "kind", Value: 1}, {Key: "username", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create snapshot index: %w", err)
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, kind Kind, username string, payload []byte) (*Snapshot, error) {
	snap := New(kind, username, payload, s.now())
	doc := mongoDoc{
		ID:        snap.ID,
		Kind:      string(snap.Kind),
		Username:  snap.Username,
		Payload:   snap.Payload,
		CreatedAt: snap.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	return snap, nil
}

func (s *MongoStore) Latest(ctx context.Context, kind Kind, username string) (*Snapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc mongoDoc
	err := s.coll.FindOne(ctx, filter(kind, username), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find snapshot: %w", err)
	}
	return doc.snapshot(), nil
}

func (s *MongoStore) List(ctx context.Context, kind Kind, username string, limit int) ([]*Snapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, filter(kind, username), opts)
	if err != nil {
		return nil, fmt.Errorf("find snapshots: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode snapshots: %w", err)
	}
	out := make([]*Snapshot, len(docs))
	for i := range docs {
		out[i] = docs[i].snapshot()
	}
	return out, nil
}

// Close disconnects the client when the store created it.
func (s *MongoStore) Close() error {
	if !s.owned || s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func filter(kind Kind, username string) bson.D {
	return bson.D{{Key: "kind", Value: string(kind)}, {Key: "username", Value: normalizeUser(username)}}
}

func (d mongoDoc) snapshot() *Snapshot {
	return &Snapshot{
		ID:        d.ID,
		Kind:      Kind(d.Kind),
		Username:  d.Username,
		Payload:   d.Payload,
		CreatedAt: d.CreatedAt,
	}
}

var _ Store = (*MongoStore)(nil)
