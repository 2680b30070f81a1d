package store

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/vnaddrnorm/core/internal/models"
)

//go:embed fixtures/admin_rows.csv
var embeddedAdminRowsCSV []byte

//go:embed fixtures/abbreviations.csv
var embeddedAbbreviationsCSV []byte

// MemoryStore is the default Store implementation: everything is loaded
// once into plain Go maps at construction and never mutated after. It is
// the store spec §5 describes as "answered from in-memory caches except
// at process startup" taken to its logical conclusion — there is no
// cache miss path because nothing is ever evicted.
//
// The embedded fixture is a small development dataset, not the full
// 13,814-row production gazetteer; NewMemoryStoreFromCSV loads an
// external dataset of the same shape for real deployments.
type MemoryStore struct {
	rows      []models.AdminRow
	rowsByID  map[int64]models.AdminRow
	abbrevs   []models.AbbreviationEntry
	abbrevIdx map[string][]models.AbbreviationEntry

	idxProvince         map[string][]int64
	idxDistrict         map[string][]int64
	idxWard             map[string][]int64
	idxProvinceDistrict map[string][]int64
	idxProvinceWard     map[string][]int64
	idxDistrictWard     map[string][]int64
	idxTriple           map[string][]int64

	abbrevCache *lru.Cache[string, map[string]string]
	logger      *zap.Logger
}

// NewMemoryStore builds a MemoryStore from the embedded development
// fixture.
func NewMemoryStore(logger *zap.Logger) (*MemoryStore, error) {
	return newMemoryStoreFromReaders(
		strings.NewReader(string(embeddedAdminRowsCSV)),
		strings.NewReader(string(embeddedAbbreviationsCSV)),
		logger,
	)
}

// NewMemoryStoreFromCSV builds a MemoryStore from external CSV files of
// the same shape as the embedded fixture, for deployments with the full
// gazetteer (the "database bootstrap" collaborator spec §1 treats as
// external to the core).
func NewMemoryStoreFromCSV(adminRowsPath, abbreviationsPath string, logger *zap.Logger) (*MemoryStore, error) {
	adminF, err := openFile(adminRowsPath)
	if err != nil {
		return nil, fmt.Errorf("open admin rows csv: %w", err)
	}
	defer adminF.Close()
	abbrevF, err := openFile(abbreviationsPath)
	if err != nil {
		return nil, fmt.Errorf("open abbreviations csv: %w", err)
	}
	defer abbrevF.Close()
	return newMemoryStoreFromReaders(adminF, abbrevF, logger)
}

func newMemoryStoreFromReaders(adminRows, abbreviations io.Reader, logger *zap.Logger) (*MemoryStore, error) {
	s, err := newEmptyMemoryStore(logger)
	if err != nil {
		return nil, err
	}

	if err := s.loadAdminRows(adminRows); err != nil {
		return nil, fmt.Errorf("reference_unavailable: load admin rows: %w", err)
	}
	if err := s.loadAbbreviations(abbreviations); err != nil {
		return nil, fmt.Errorf("reference_unavailable: load abbreviations: %w", err)
	}

	s.logger.Info("reference store loaded",
		zap.Int("rows", len(s.rows)),
		zap.Int("abbreviations", len(s.abbrevs)))
	return s, nil
}

func tripleKey(parts ...string) string {
	return strings.Join(parts, "|")
}

func (s *MemoryStore) loadAdminRows(r io.Reader) error {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return err
	}
	if len(records) < 1 {
		return fmt.Errorf("admin rows csv is empty")
	}
	for _, rec := range records[1:] {
		if len(rec) < 10 {
			continue
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad row_id %q: %w", rec[0], err)
		}
		row := models.AdminRow{
			RowID:          id,
			ProvinceFull:   rec[1],
			ProvincePrefix: rec[2],
			ProvinceName:   rec[3],
			DistrictFull:   rec[4],
			DistrictPrefix: rec[5],
			DistrictName:   rec[6],
			WardFull:       rec[7],
			WardPrefix:     rec[8],
			WardName:       rec[9],
		}
		row.ProvinceNameNormalized = NormalizeName(row.ProvinceName)
		row.ProvinceFullNormalized = NormalizeName(row.ProvinceFull)
		row.DistrictNameNormalized = NormalizeName(row.DistrictName)
		row.DistrictFullNormalized = NormalizeName(row.DistrictFull)
		row.WardNameNormalized = NormalizeName(row.WardName)
		row.WardFullNormalized = NormalizeName(row.WardFull)

		s.ingestRow(row)
	}
	return nil
}

// newEmptyMemoryStore builds a MemoryStore with initialized indexes but no
// rows, for backends (SQLiteStore) that source rows from elsewhere and
// populate it via ingestRow/ingestAbbreviation.
func newEmptyMemoryStore(logger *zap.Logger) (*MemoryStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[string, map[string]string](256)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{
		rowsByID:            make(map[int64]models.AdminRow),
		abbrevIdx:           make(map[string][]models.AbbreviationEntry),
		idxProvince:         make(map[string][]int64),
		idxDistrict:         make(map[string][]int64),
		idxWard:             make(map[string][]int64),
		idxProvinceDistrict: make(map[string][]int64),
		idxProvinceWard:     make(map[string][]int64),
		idxDistrictWard:     make(map[string][]int64),
		idxTriple:           make(map[string][]int64),
		abbrevCache:         cache,
		logger:              logger,
	}, nil
}

// ingestRow adds row to the row set and all indexes. Only meant to be
// called while building the store, before concurrent reads begin.
func (s *MemoryStore) ingestRow(row models.AdminRow) {
	s.rows = append(s.rows, row)
	s.rowsByID[row.RowID] = row
	s.indexRow(row)
}

// ingestAbbreviation adds e to the abbreviation set, building normalized
// contexts if not already normalized.
func (s *MemoryStore) ingestAbbreviation(e models.AbbreviationEntry) {
	e.ProvinceContext = NormalizeName(e.ProvinceContext)
	e.DistrictContext = NormalizeName(e.DistrictContext)
	s.abbrevs = append(s.abbrevs, e)
	s.abbrevIdx[e.Key] = append(s.abbrevIdx[e.Key], e)
}

func (s *MemoryStore) indexRow(row models.AdminRow) {
	p, d, w := row.ProvinceNameNormalized, row.DistrictNameNormalized, row.WardNameNormalized
	s.idxProvince[p] = append(s.idxProvince[p], row.RowID)
	s.idxDistrict[d] = append(s.idxDistrict[d], row.RowID)
	s.idxWard[w] = append(s.idxWard[w], row.RowID)
	s.idxProvinceDistrict[tripleKey(p, d)] = append(s.idxProvinceDistrict[tripleKey(p, d)], row.RowID)
	s.idxProvinceWard[tripleKey(p, w)] = append(s.idxProvinceWard[tripleKey(p, w)], row.RowID)
	s.idxDistrictWard[tripleKey(d, w)] = append(s.idxDistrictWard[tripleKey(d, w)], row.RowID)
	s.idxTriple[tripleKey(p, d, w)] = append(s.idxTriple[tripleKey(p, d, w)], row.RowID)
}

func (s *MemoryStore) loadAbbreviations(r io.Reader) error {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return err
	}
	if len(records) < 1 {
		return nil
	}
	for _, rec := range records[1:] {
		if len(rec) < 2 {
			continue
		}
		e := models.AbbreviationEntry{Key: strings.ToLower(strings.TrimSpace(rec[0])), Word: rec[1]}
		if len(rec) > 2 {
			e.ProvinceContext = NormalizeName(rec[2])
		}
		if len(rec) > 3 {
			e.DistrictContext = NormalizeName(rec[3])
		}
		s.ingestAbbreviation(e)
	}
	return nil
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// CandidatesInScope implements Store.
func (s *MemoryStore) CandidatesInScope(province, district string) []models.AdminRow {
	var ids []int64
	switch {
	case province == "" && district == "":
		return s.AllRows()
	case district == "":
		ids = s.idxProvince[province]
	case province == "":
		ids = s.idxDistrict[district]
	default:
		ids = s.idxProvinceDistrict[tripleKey(province, district)]
	}
	out := make([]models.AdminRow, 0, len(ids))
	for _, id := range ids {
		if row, ok := s.rowsByID[id]; ok {
			out = append(out, row)
		}
	}
	return out
}

// ValidateTriple implements Store.
func (s *MemoryStore) ValidateTriple(province, district, ward string) bool {
	switch {
	case province == "" && district == "" && ward == "":
		return len(s.rows) > 0
	case district == "" && ward == "":
		return len(s.idxProvince[province]) > 0
	case province == "" && ward == "":
		return len(s.idxDistrict[district]) > 0
	case province == "" && district == "":
		return len(s.idxWard[ward]) > 0
	case ward == "":
		return len(s.idxProvinceDistrict[tripleKey(province, district)]) > 0
	case district == "":
		return len(s.idxProvinceWard[tripleKey(province, ward)]) > 0
	case province == "":
		return len(s.idxDistrictWard[tripleKey(district, ward)]) > 0
	default:
		return len(s.idxTriple[tripleKey(province, district, ward)]) > 0
	}
}

// LookupAbbreviation implements Store and normalizer.AbbreviationLookup.
// Resolution order: (province,district), then (province,-), then (-,-).
func (s *MemoryStore) LookupAbbreviation(key, province, district string) (string, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	entries, ok := s.abbrevIdx[key]
	if !ok {
		return "", false
	}
	np, nd := NormalizeName(province), NormalizeName(district)
	if w, ok := findAbbrev(entries, np, nd); ok {
		return w, true
	}
	if np != "" {
		if w, ok := findAbbrev(entries, np, ""); ok {
			return w, true
		}
	}
	if w, ok := findAbbrev(entries, "", ""); ok {
		return w, true
	}
	return "", false
}

func findAbbrev(entries []models.AbbreviationEntry, province, district string) (string, bool) {
	for _, e := range entries {
		if e.ProvinceContext == province && e.DistrictContext == district {
			return e.Word, true
		}
	}
	return "", false
}

// LoadAbbreviations implements Store, cached on (province, district).
func (s *MemoryStore) LoadAbbreviations(province, district string) map[string]string {
	cacheKey := tripleKey(NormalizeName(province), NormalizeName(district))
	if v, ok := s.abbrevCache.Get(cacheKey); ok {
		return v
	}
	out := make(map[string]string)
	for key := range s.abbrevIdx {
		if w, ok := s.LookupAbbreviation(key, province, district); ok {
			out[key] = w
		}
	}
	s.abbrevCache.Add(cacheKey, out)
	return out
}

// RowByID implements Store.
func (s *MemoryStore) RowByID(id int64) (models.AdminRow, bool) {
	row, ok := s.rowsByID[id]
	return row, ok
}

// AllRows implements Store.
func (s *MemoryStore) AllRows() []models.AdminRow {
	out := make([]models.AdminRow, len(s.rows))
	copy(out, s.rows)
	return out
}
