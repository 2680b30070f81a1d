// Package pipeline wires the five phases (preprocess, extract, assemble,
// rank, postprocess) into the single entry point the rest of the module
// calls, in the style of the teacher's AddressService
// (app/services/address_service.go): one struct holding every
// collaborator, constructed once at startup, with a context-bearing
// method doing the real work and zap logging at each step.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vnaddrnorm/core/internal/assemble"
	vcache "github.com/vnaddrnorm/core/internal/cache"
	"github.com/vnaddrnorm/core/internal/config"
	"github.com/vnaddrnorm/core/internal/extract"
	"github.com/vnaddrnorm/core/internal/geocoder"
	"github.com/vnaddrnorm/core/internal/models"
	"github.com/vnaddrnorm/core/internal/normalizer"
	"github.com/vnaddrnorm/core/internal/postprocess"
	"github.com/vnaddrnorm/core/internal/rank"
	"github.com/vnaddrnorm/core/internal/store"
	"github.com/vnaddrnorm/core/internal/tokenindex"
)

// Hints narrows the search space the way the teacher's ParseOptions did
// for province/district, without carrying over its job-management or
// confidence-override fields (those belong to the API layer, not the
// core pipeline).
type Hints struct {
	ProvinceHint string
	DistrictHint string
}

// Pipeline is the assembled, ready-to-call normalization engine.
type Pipeline struct {
	store      store.Store
	index      *tokenindex.Index
	normalizer *normalizer.Normalizer
	migration  store.MigrationLoader
	geocoder   geocoder.Geocoder
	cache      vcache.Cache
	cfg        config.Config
	logger     *zap.Logger
}

// New builds a Pipeline. geo and cacheImpl may be nil (no external
// lookup, no caching, respectively); migration defaults to a no-op.
func New(st store.Store, norm *normalizer.Normalizer, migration store.MigrationLoader, geo geocoder.Geocoder, cacheImpl vcache.Cache, cfg config.Config, logger *zap.Logger) *Pipeline {
	if migration == nil {
		migration = store.NoopMigrationLoader{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		store:      st,
		index:      tokenindex.Build(st.AllRows()),
		normalizer: norm,
		migration:  migration,
		geocoder:   geo,
		cache:      cacheImpl,
		cfg:        cfg,
		logger:     logger,
	}
}

// cacheKey fingerprints the request the way spec §5 requires ("process-
// wide cache keyed on a fingerprint of input+hints"), grounded on the
// teacher's prefix+key scheme but using a content hash instead of the raw
// string so long inputs don't bloat cache backends.
func cacheKey(raw string, hints Hints) string {
	h := sha256.New()
	h.Write([]byte(raw))
	h.Write([]byte{0})
	h.Write([]byte(hints.ProvinceHint))
	h.Write([]byte{0})
	h.Write([]byte(hints.DistrictHint))
	return hex.EncodeToString(h.Sum(nil))
}

// Normalize runs the full pipeline for one address string: input
// validation, cache lookup, the five phases, and cache population. A blank
// address (input_invalid) comes back as a Result with MatchType none and
// QualityFlag failed; like every other failure mode it is reported through
// the Result, not as an error.
func (p *Pipeline) Normalize(ctx context.Context, raw string, hints Hints) (models.Result, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.Result{Raw: raw, MatchType: models.MatchNone, QualityFlag: models.QualityFailed}, nil
	}

	key := cacheKey(trimmed, hints)
	if p.cache != nil {
		if cached, ok, err := p.cache.Get(ctx, key); err == nil && ok {
			var result models.Result
			if err := json.Unmarshal(cached, &result); err == nil {
				p.logger.Debug("pipeline cache hit", zap.String("key", key))
				return result, nil
			}
		}
	}

	var timings models.PhaseTimings

	t0 := time.Now()
	norm := p.normalizer.Normalize(trimmed, hints.ProvinceHint, hints.DistrictHint)
	timings.Preprocess = time.Since(t0)

	t1 := time.Now()
	potentials := extract.ExtractPotentials(norm.Tokens, hints.ProvinceHint, hints.DistrictHint, p.store, p.index, p.cfg)
	timings.Extract = time.Since(t1)

	t2 := time.Now()
	candidates := assemble.AssembleCandidates(potentials, p.store, p.migration, p.cfg)
	if p.geocoder != nil && assemble.NeedsExternalLookup(candidates, p.cfg) {
		candidates = p.consultGeocoder(ctx, trimmed, candidates)
	}
	timings.Assemble = time.Since(t2)

	t3 := time.Now()
	ranked := rank.Rank(candidates, nil)
	timings.Rank = time.Since(t3)

	t4 := time.Now()
	result := postprocess.BuildResult(trimmed, norm, ranked, timings)
	timings.Postprocess = time.Since(t4)
	result.Timings = timings

	if p.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := p.cache.Set(ctx, key, data); err != nil {
				p.logger.Warn("pipeline cache set failed", zap.Error(err))
			}
		}
	}

	return result, nil
}

// consultGeocoder queries the external geocoder and, on a hit, prepends
// an external-sourced Candidate so Phase 4 can weigh it alongside the
// local ones. A geocoder failure is logged and otherwise ignored, per
// spec §9's fail-soft requirement.
func (p *Pipeline) consultGeocoder(ctx context.Context, raw string, candidates []models.Candidate) []models.Candidate {
	hit, found, err := p.geocoder.Lookup(ctx, raw)
	if err != nil {
		p.logger.Warn("geocoder_failure", zap.Error(err))
		return candidates
	}
	if !found {
		return candidates
	}

	ext := models.Candidate{
		Source:          models.CandidateSourceExternal,
		ProvinceDisplay:  hit.Province,
		DistrictDisplay:  hit.District,
		WardDisplay:      hit.Ward,
		ProvinceName:     store.NormalizeName(hit.Province),
		DistrictName:     store.NormalizeName(hit.District),
		WardName:         store.NormalizeName(hit.Ward),
		ProvinceScore:    hit.Confidence,
		DistrictScore:    hit.Confidence,
		WardScore:        hit.Confidence,
		HasProvince:      hit.Province != "",
		HasDistrict:      hit.District != "",
		HasWard:          hit.Ward != "",
	}
	ext.HierarchyValid = p.store.ValidateTriple(ext.ProvinceName, ext.DistrictName, ext.WardName)
	return append([]models.Candidate{ext}, candidates...)
}
