package store

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/vnaddrnorm/core/internal/models"
)

// sqliteSchema is the reference-store schema from spec §6, expressed for
// modernc.org/sqlite (pure Go, no cgo). Indexes mirror the spec's required
// set: one per *_name_normalized column plus the composite triple.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS admin_divisions (
	row_id INTEGER PRIMARY KEY,
	province_full TEXT NOT NULL,
	province_prefix TEXT NOT NULL,
	province_name TEXT NOT NULL,
	province_name_normalized TEXT NOT NULL,
	province_full_normalized TEXT NOT NULL,
	district_full TEXT NOT NULL,
	district_prefix TEXT NOT NULL,
	district_name TEXT NOT NULL,
	district_name_normalized TEXT NOT NULL,
	district_full_normalized TEXT NOT NULL,
	ward_full TEXT NOT NULL,
	ward_prefix TEXT NOT NULL,
	ward_name TEXT NOT NULL,
	ward_name_normalized TEXT NOT NULL,
	ward_full_normalized TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_admin_province_norm ON admin_divisions(province_name_normalized);
CREATE INDEX IF NOT EXISTS idx_admin_district_norm ON admin_divisions(district_name_normalized);
CREATE INDEX IF NOT EXISTS idx_admin_ward_norm ON admin_divisions(ward_name_normalized);
CREATE INDEX IF NOT EXISTS idx_admin_triple_norm ON admin_divisions(province_name_normalized, district_name_normalized, ward_name_normalized);

CREATE TABLE IF NOT EXISTS abbreviations (
	key TEXT NOT NULL,
	word TEXT NOT NULL,
	province_context TEXT,
	district_context TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_abbrev_unique ON abbreviations(key, COALESCE(province_context,''), COALESCE(district_context,''));
`

// SQLiteStore is the Store backend for the "single-writer SQLite,
// connection pool" deployment spec §5 names. Reads are served entirely
// from an in-memory index built once at Open, matching spec §5's
// requirement that runtime reads come from in-memory caches; the *sql.DB
// handle is kept only for the connection pool a write-side migration tool
// would use (the core itself never writes).
type SQLiteStore struct {
	*MemoryStore
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) a SQLite database at path,
// applies the schema, loads every row into memory, and returns a Store
// ready for the hot path.
func OpenSQLiteStore(path string, poolSize int, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("reference_unavailable: open sqlite: %w", err)
	}
	if poolSize <= 0 {
		poolSize = 4
	}
	db.SetMaxOpenConns(poolSize)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("reference_unavailable: apply schema: %w", err)
	}

	mem, err := newEmptyMemoryStore(logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := loadRowsFromDB(db, mem); err != nil {
		db.Close()
		return nil, fmt.Errorf("reference_unavailable: load admin_divisions: %w", err)
	}
	if err := loadAbbreviationsFromDB(db, mem); err != nil {
		db.Close()
		return nil, fmt.Errorf("reference_unavailable: load abbreviations: %w", err)
	}

	logger.Info("sqlite reference store loaded",
		zap.String("path", path),
		zap.Int("rows", len(mem.rows)),
		zap.Int("abbreviations", len(mem.abbrevs)))

	return &SQLiteStore{MemoryStore: mem, db: db}, nil
}

func loadRowsFromDB(db *sql.DB, mem *MemoryStore) error {
	rows, err := db.Query(`SELECT row_id, province_full, province_prefix, province_name,
		province_name_normalized, province_full_normalized,
		district_full, district_prefix, district_name,
		district_name_normalized, district_full_normalized,
		ward_full, ward_prefix, ward_name,
		ward_name_normalized, ward_full_normalized FROM admin_divisions`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var r models.AdminRow
		if err := rows.Scan(&r.RowID, &r.ProvinceFull, &r.ProvincePrefix, &r.ProvinceName,
			&r.ProvinceNameNormalized, &r.ProvinceFullNormalized,
			&r.DistrictFull, &r.DistrictPrefix, &r.DistrictName,
			&r.DistrictNameNormalized, &r.DistrictFullNormalized,
			&r.WardFull, &r.WardPrefix, &r.WardName,
			&r.WardNameNormalized, &r.WardFullNormalized); err != nil {
			return err
		}
		mem.ingestRow(r)
	}
	return rows.Err()
}

func loadAbbreviationsFromDB(db *sql.DB, mem *MemoryStore) error {
	rows, err := db.Query(`SELECT key, word, COALESCE(province_context,''), COALESCE(district_context,'') FROM abbreviations`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e models.AbbreviationEntry
		if err := rows.Scan(&e.Key, &e.Word, &e.ProvinceContext, &e.DistrictContext); err != nil {
			return err
		}
		mem.ingestAbbreviation(e)
	}
	return rows.Err()
}

// Close releases the pooled connections. The in-memory index continues to
// serve reads after Close; only a later reload would need the handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
