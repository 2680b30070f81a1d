package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	ms "github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/vnaddrnorm/core/internal/models"
)

// MeiliStore is an optional Store backend for deployments that already
// run a Meilisearch cluster to serve candidates_in_scope, adapted from
// internal/search/gazetteer_searcher.go's index-per-level layout (one
// index, named by the caller, filtered by province_name_normalized/
// district_name_normalized instead of the teacher's level+parent_id
// scheme, since the core has no notion of a standalone country/level
// hierarchy beyond the triple).
//
// It still needs the full row set in memory for ValidateTriple and
// LookupAbbreviation, which are called far more often than
// CandidatesInScope is rebuilt, so every operation except
// CandidatesInScope is served by an embedded MemoryStore whose rows are
// indexed into Meilisearch once, at construction. CandidatesInScope sends
// Meilisearch an empty query with exact-equality filters, so no
// typo-tolerant matching is involved.
type MeiliStore struct {
	inner *MemoryStore
	cli   ms.ServiceManager
	index string
	logger *zap.Logger
}

// NewMeiliStore wraps an in-memory store's row data with a Meilisearch-
// backed CandidatesInScope, indexing every row under indexName.
func NewMeiliStore(ctx context.Context, inner *MemoryStore, url, apiKey, indexName string, logger *zap.Logger) (*MeiliStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cli := ms.New(url, ms.WithAPIKey(apiKey))
	s := &MeiliStore{inner: inner, cli: cli, index: indexName, logger: logger}
	if err := s.reindex(ctx); err != nil {
		return nil, fmt.Errorf("reference_unavailable: meilisearch reindex: %w", err)
	}
	return s, nil
}

type meiliRowDoc struct {
	ID                     string `json:"id"`
	RowID                  int64  `json:"row_id"`
	ProvinceNameNormalized string `json:"province_name_normalized"`
	DistrictNameNormalized string `json:"district_name_normalized"`
	WardNameNormalized     string `json:"ward_name_normalized"`
}

func (s *MeiliStore) reindex(ctx context.Context) error {
	idx := s.cli.Index(s.index)
	docs := make([]meiliRowDoc, 0, len(s.inner.rows))
	for _, r := range s.inner.rows {
		docs = append(docs, meiliRowDoc{
			ID:                     strconv.FormatInt(r.RowID, 10),
			RowID:                  r.RowID,
			ProvinceNameNormalized: r.ProvinceNameNormalized,
			DistrictNameNormalized: r.DistrictNameNormalized,
			WardNameNormalized:     r.WardNameNormalized,
		})
	}
	filterable := []string{"province_name_normalized", "district_name_normalized", "ward_name_normalized"}
	if _, err := idx.UpdateFilterableAttributes(&filterable); err != nil {
		return err
	}
	if _, err := idx.AddDocuments(docs, "id"); err != nil {
		return err
	}
	s.logger.Info("meilisearch index rebuilt", zap.String("index", s.index), zap.Int("rows", len(docs)))
	return nil
}

// CandidatesInScope asks Meilisearch for rows matching the scope filter,
// falling back to the in-memory index set on any search error (fail-soft,
// same posture as the external geocoder in Phase 3).
func (s *MeiliStore) CandidatesInScope(province, district string) []models.AdminRow {
	var filters []string
	if province != "" {
		filters = append(filters, fmt.Sprintf("province_name_normalized = %q", province))
	}
	if district != "" {
		filters = append(filters, fmt.Sprintf("district_name_normalized = %q", district))
	}
	if len(filters) == 0 {
		return s.inner.AllRows()
	}
	req := &ms.SearchRequest{Filter: strings.Join(filters, " AND "), Limit: 1000}
	res, err := s.cli.Index(s.index).Search("", req)
	if err != nil {
		s.logger.Warn("meilisearch search failed, falling back to memory scope", zap.Error(err))
		return s.inner.CandidatesInScope(province, district)
	}
	out := make([]models.AdminRow, 0, len(res.Hits))
	for _, hit := range res.Hits {
		m, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		idf, ok := m["row_id"].(float64)
		if !ok {
			continue
		}
		if row, ok := s.inner.RowByID(int64(idf)); ok {
			out = append(out, row)
		}
	}
	return out
}

func (s *MeiliStore) ValidateTriple(province, district, ward string) bool {
	return s.inner.ValidateTriple(province, district, ward)
}

func (s *MeiliStore) LookupAbbreviation(key, province, district string) (string, bool) {
	return s.inner.LookupAbbreviation(key, province, district)
}

func (s *MeiliStore) LoadAbbreviations(province, district string) map[string]string {
	return s.inner.LoadAbbreviations(province, district)
}

func (s *MeiliStore) RowByID(id int64) (models.AdminRow, bool) {
	return s.inner.RowByID(id)
}

func (s *MeiliStore) AllRows() []models.AdminRow {
	return s.inner.AllRows()
}

var _ Store = (*MeiliStore)(nil)
