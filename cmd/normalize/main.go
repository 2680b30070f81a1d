// cmd/normalize is a one-shot CLI for exercising the pipeline against a
// single address from the command line, adapted from the teacher's
// test/test_parser.go loop-over-test-addresses shape but driven by a flag
// instead of a hardcoded slice.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/vnaddrnorm/core/internal/config"
	"github.com/vnaddrnorm/core/internal/normalizer"
	"github.com/vnaddrnorm/core/internal/pipeline"
	"github.com/vnaddrnorm/core/internal/store"
)

func main() {
	address := flag.String("address", "", "address to normalize (required)")
	provinceHint := flag.String("province-hint", "", "optional province hint")
	districtHint := flag.String("district-hint", "", "optional district hint")
	sqlitePath := flag.String("sqlite", "", "path to a seeded SQLite reference store (defaults to the embedded fixture)")
	flag.Parse()

	if *address == "" {
		log.Fatal("-address is required")
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	var st store.Store
	var err error
	if *sqlitePath != "" {
		st, err = store.OpenSQLiteStore(*sqlitePath, 1, logger)
	} else {
		st, err = store.NewMemoryStore(logger)
	}
	if err != nil {
		log.Fatalf("open reference store: %v", err)
	}

	cfg := config.Default()
	norm, err := normalizer.NewNormalizer(st, cfg.NormalizationCacheSize, logger)
	if err != nil {
		log.Fatalf("build normalizer: %v", err)
	}

	engine := pipeline.New(st, norm, nil, nil, nil, cfg, logger)

	result, err := engine.Normalize(context.Background(), *address, pipeline.Hints{
		ProvinceHint: *provinceHint,
		DistrictHint: *districtHint,
	})
	if err != nil {
		log.Fatalf("normalize: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("marshal result: %v", err)
	}
	fmt.Println(string(out))
}
