// cmd/seed loads the admin_rows/abbreviations CSV pair into a SQLite
// reference store and, optionally, a Meilisearch index, adapted from the
// teacher's cmd/seed_meilisearch.go (index settings, task polling) and
// scripts/prepare_seed.go (CSV-driven seeding) but targeting the new
// admin_divisions/abbreviations schema instead of the teacher's
// AdminUnitDoc tree.
package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/meilisearch/meilisearch-go"
	_ "modernc.org/sqlite"

	"github.com/vnaddrnorm/core/internal/store"
)

func main() {
	adminCSV := flag.String("admin-csv", "", "path to admin_rows.csv (required)")
	abbrevCSV := flag.String("abbrev-csv", "", "path to abbreviations.csv")
	sqlitePath := flag.String("sqlite", "vnaddrnorm.db", "output SQLite database path")
	meiliURL := flag.String("meili-url", "", "Meilisearch host, e.g. http://localhost:7700 (optional)")
	meiliKey := flag.String("meili-key", "", "Meilisearch API key")
	meiliIndex := flag.String("meili-index", "admin_divisions", "Meilisearch index name")
	flag.Parse()

	if *adminCSV == "" {
		log.Fatal("-admin-csv is required")
	}

	db, err := sql.Open("sqlite", *sqlitePath)
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	if err := applySchema(db); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	rows, err := seedAdminRows(db, *adminCSV)
	if err != nil {
		log.Fatalf("seed admin rows: %v", err)
	}
	fmt.Printf("loaded %d admin rows into %s\n", rows, *sqlitePath)

	if *abbrevCSV != "" {
		n, err := seedAbbreviations(db, *abbrevCSV)
		if err != nil {
			log.Fatalf("seed abbreviations: %v", err)
		}
		fmt.Printf("loaded %d abbreviations into %s\n", n, *sqlitePath)
	}

	if *meiliURL != "" {
		if err := seedMeilisearch(*meiliURL, *meiliKey, *meiliIndex, db); err != nil {
			log.Fatalf("seed meilisearch: %v", err)
		}
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS admin_divisions (
	row_id INTEGER PRIMARY KEY,
	province_full TEXT NOT NULL, province_prefix TEXT NOT NULL, province_name TEXT NOT NULL,
	province_name_normalized TEXT NOT NULL, province_full_normalized TEXT NOT NULL,
	district_full TEXT NOT NULL, district_prefix TEXT NOT NULL, district_name TEXT NOT NULL,
	district_name_normalized TEXT NOT NULL, district_full_normalized TEXT NOT NULL,
	ward_full TEXT NOT NULL, ward_prefix TEXT NOT NULL, ward_name TEXT NOT NULL,
	ward_name_normalized TEXT NOT NULL, ward_full_normalized TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS abbreviations (
	key TEXT NOT NULL, word TEXT NOT NULL, province_context TEXT, district_context TEXT
);
`

func applySchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

func seedAdminRows(db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil { // header
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare(`INSERT INTO admin_divisions
		(row_id, province_full, province_prefix, province_name, province_name_normalized, province_full_normalized,
		 district_full, district_prefix, district_name, district_name_normalized, district_full_normalized,
		 ward_full, ward_prefix, ward_name, ward_name_normalized, ward_full_normalized)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			tx.Rollback()
			return n, err
		}
		row, err := parseAdminRecord(rec)
		if err != nil {
			tx.Rollback()
			return n, err
		}
		if _, err := stmt.Exec(row...); err != nil {
			tx.Rollback()
			return n, err
		}
		n++
	}
	return n, tx.Commit()
}

// parseAdminRecord expects the admin_rows.csv header: row_id, province_full,
// province_prefix, province_name, district_full, district_prefix,
// district_name, ward_full, ward_prefix, ward_name, and derives each
// *_name_normalized column from its *_name field and each
// *_full_normalized column from its *_full field.
func parseAdminRecord(rec []string) ([]any, error) {
	if len(rec) < 10 {
		return nil, fmt.Errorf("expected at least 10 columns, got %d", len(rec))
	}
	rowID, provinceFull, provincePrefix, provinceName := rec[0], rec[1], rec[2], rec[3]
	districtFull, districtPrefix, districtName := rec[4], rec[5], rec[6]
	wardFull, wardPrefix, wardName := rec[7], rec[8], rec[9]

	return []any{
		rowID,
		provinceFull, provincePrefix, provinceName, store.NormalizeName(provinceName), store.NormalizeName(provinceFull),
		districtFull, districtPrefix, districtName, store.NormalizeName(districtName), store.NormalizeName(districtFull),
		wardFull, wardPrefix, wardName, store.NormalizeName(wardName), store.NormalizeName(wardFull),
	}, nil
}

func seedAbbreviations(db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare(`INSERT INTO abbreviations (key, word, province_context, district_context) VALUES (?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			tx.Rollback()
			return n, err
		}
		if len(rec) < 4 {
			continue
		}
		if _, err := stmt.Exec(rec[0], rec[1], rec[2], rec[3]); err != nil {
			tx.Rollback()
			return n, err
		}
		n++
	}
	return n, tx.Commit()
}

type meiliRowDoc struct {
	RowID          int64  `json:"row_id"`
	ProvinceName   string `json:"province_name"`
	DistrictName   string `json:"district_name"`
	WardName       string `json:"ward_name"`
	ProvinceDisplay string `json:"province_display"`
	DistrictDisplay string `json:"district_display"`
	WardDisplay     string `json:"ward_display"`
}

func seedMeilisearch(url, key, indexName string, db *sql.DB) error {
	client := meilisearch.New(url, meilisearch.WithAPIKey(key))
	if _, err := client.Health(); err != nil {
		return fmt.Errorf("meilisearch unreachable: %w", err)
	}
	index := client.Index(indexName)

	settings := &meilisearch.Settings{
		SearchableAttributes: []string{"province_name", "district_name", "ward_name"},
		FilterableAttributes: []string{"province_name", "district_name"},
	}
	if _, err := index.UpdateSettings(settings); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	rows, err := db.Query(`SELECT row_id, province_name_normalized, district_name_normalized, ward_name_normalized,
		province_full, district_full, ward_full FROM admin_divisions`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var docs []meiliRowDoc
	for rows.Next() {
		var d meiliRowDoc
		if err := rows.Scan(&d.RowID, &d.ProvinceName, &d.DistrictName, &d.WardName,
			&d.ProvinceDisplay, &d.DistrictDisplay, &d.WardDisplay); err != nil {
			return err
		}
		docs = append(docs, d)
	}

	if _, err := index.AddDocuments(docs, "row_id"); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	fmt.Printf("indexed %d rows into meilisearch index %q\n", len(docs), indexName)
	return nil
}
