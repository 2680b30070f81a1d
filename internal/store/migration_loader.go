package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MigrationLoader resolves a legacy (old_province, old_district,
// old_ward) triple to its current names, implementing the optional
// admin_division_migration table spec §4.1/§9 describes as "referenced
// inconsistently" in the source and left optional here: Phase 3 calls
// Rewrite before scoring if a loader is configured, per spec §9's "MAY
// rewrite legacy (...) before scoring" allowance.
type MigrationLoader interface {
	Rewrite(province, district, ward string) (newProvince, newDistrict, newWard string, ok bool)
}

// NoopMigrationLoader is used when no migration table is configured; Phase
// 3 treats every triple as current.
type NoopMigrationLoader struct{}

func (NoopMigrationLoader) Rewrite(province, district, ward string) (string, string, string, bool) {
	return "", "", "", false
}

// MongoMigrationLoader loads the admin_division_migration table from
// Mongo, adapted from admin_service.go's collection-access pattern. The
// whole table is read once into memory at construction, consistent with
// spec §5's "answered from in-memory caches except at process startup".
type MongoMigrationLoader struct {
	entries map[string]migrationTarget
	logger  *zap.Logger
}

type migrationTarget struct {
	province, district, ward string
}

type migrationDoc struct {
	OldProvince string `bson:"old_province"`
	OldDistrict string `bson:"old_district"`
	OldWard     string `bson:"old_ward"`
	NewProvince string `bson:"new_province"`
	NewDistrict string `bson:"new_district"`
	NewWard     string `bson:"new_ward"`
}

// NewMongoMigrationLoader reads every document in collection into memory.
func NewMongoMigrationLoader(ctx context.Context, db *mongo.Database, collection string, logger *zap.Logger) (*MongoMigrationLoader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cur, err := db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("reference_unavailable: query admin_division_migration: %w", err)
	}
	defer cur.Close(ctx)

	l := &MongoMigrationLoader{entries: make(map[string]migrationTarget), logger: logger}
	for cur.Next(ctx) {
		var doc migrationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("reference_unavailable: decode migration row: %w", err)
		}
		key := tripleKey(
			NormalizeName(doc.OldProvince),
			NormalizeName(doc.OldDistrict),
			NormalizeName(doc.OldWard),
		)
		l.entries[key] = migrationTarget{
			province: doc.NewProvince,
			district: doc.NewDistrict,
			ward:     doc.NewWard,
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("reference_unavailable: iterate migration rows: %w", err)
	}
	logger.Info("admin_division_migration loaded", zap.Int("entries", len(l.entries)))
	return l, nil
}

// Rewrite implements MigrationLoader.
func (l *MongoMigrationLoader) Rewrite(province, district, ward string) (string, string, string, bool) {
	key := tripleKey(NormalizeName(province), NormalizeName(district), NormalizeName(ward))
	t, ok := l.entries[key]
	if !ok {
		return "", "", "", false
	}
	return t.province, t.district, t.ward, true
}

var (
	_ MigrationLoader = NoopMigrationLoader{}
	_ MigrationLoader = (*MongoMigrationLoader)(nil)
)
