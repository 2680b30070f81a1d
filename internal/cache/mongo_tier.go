package cache

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoTier is a persistent cache tier backed by MongoDB, adapted from the
// teacher's MongoCacheService (app/services/mongo_cache_service.go). Unlike
// the teacher's version it has no in-process L1 of its own — that concern
// belongs to HybridCache — and it stores the caller's serialized bytes
// directly instead of decoding into a typed AddressResult.
type MongoTier struct {
	collection *mongo.Collection
	logger     *zap.Logger
	hits       int64
	misses     int64
}

type mongoCacheDoc struct {
	Fingerprint  string    `bson:"fingerprint"`
	Payload      []byte    `bson:"payload"`
	CreatedAt    time.Time `bson:"created_at"`
	LastAccessed time.Time `bson:"last_accessed"`
	AccessCount  int64     `bson:"access_count"`
}

// NewMongoTier opens (and indexes) the cache collection. Index creation
// failure is logged, not fatal, matching the teacher's own tolerance for a
// missing index permission on a shared cluster.
func NewMongoTier(ctx context.Context, db *mongo.Database, collection string, logger *zap.Logger) (*MongoTier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	col := db.Collection(collection)

	ictx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := col.Indexes().CreateOne(ictx, mongo.IndexModel{
		Keys:    bson.D{bson.E{Key: "fingerprint", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logger.Warn("could not create fingerprint index on cache collection", zap.Error(err))
	}

	return &MongoTier{collection: col, logger: logger}, nil
}

func (t *MongoTier) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoCacheDoc
	err := t.collection.FindOne(ctx, bson.M{"fingerprint": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		t.misses++
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("mongo cache get: %w", err)
	}
	t.hits++
	go t.touch(key)
	return doc.Payload, true, nil
}

func (t *MongoTier) Set(ctx context.Context, key string, result []byte) error {
	now := time.Now()
	doc := mongoCacheDoc{Fingerprint: key, Payload: result, CreatedAt: now, LastAccessed: now, AccessCount: 1}
	opts := options.Replace().SetUpsert(true)
	_, err := t.collection.ReplaceOne(ctx, bson.M{"fingerprint": key}, doc, opts)
	if err != nil {
		return fmt.Errorf("mongo cache set: %w", err)
	}
	return nil
}

func (t *MongoTier) Delete(ctx context.Context, key string) error {
	_, err := t.collection.DeleteOne(ctx, bson.M{"fingerprint": key})
	return err
}

func (t *MongoTier) Clear(ctx context.Context) error {
	_, err := t.collection.DeleteMany(ctx, bson.M{})
	t.hits, t.misses = 0, 0
	return err
}

func (t *MongoTier) Stats(ctx context.Context) (Stats, error) {
	count, err := t.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return Stats{}, fmt.Errorf("mongo cache stats: %w", err)
	}
	total := t.hits + t.misses
	var rate float64
	if total > 0 {
		rate = float64(t.hits) / float64(total)
	}
	return Stats{HitRate: rate, TotalHits: t.hits, TotalMiss: t.misses, TotalItems: count}, nil
}

func (t *MongoTier) Close() error {
	return nil
}

// touch bumps last_accessed/access_count in the background, matching the
// teacher's fire-and-forget updateAccessStats.
func (t *MongoTier) touch(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := t.collection.UpdateOne(ctx,
		bson.M{"fingerprint": key},
		bson.M{"$set": bson.M{"last_accessed": time.Now()}, "$inc": bson.M{"access_count": 1}},
	)
	if err != nil {
		t.logger.Warn("update cache access stats failed", zap.Error(err))
	}
}

var _ Cache = (*MongoTier)(nil)
