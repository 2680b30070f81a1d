// cmd/worker batch-normalizes a file of addresses, one per line, writing
// one JSON Result per line to stdout. Adapted from the teacher's
// cmd/worker/main.go, which loaded config and then just waited on a
// signal channel with a "TODO: implement worker logic" — this gives it
// the batch-processing job the stub was left to grow into.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/vnaddrnorm/core/internal/config"
	"github.com/vnaddrnorm/core/internal/normalizer"
	"github.com/vnaddrnorm/core/internal/pipeline"
	"github.com/vnaddrnorm/core/internal/store"
)

func main() {
	inputPath := flag.String("input", "", "file of newline-delimited addresses (defaults to stdin)")
	sqlitePath := flag.String("sqlite", "", "path to a seeded SQLite reference store (defaults to the embedded fixture)")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var st store.Store
	var err error
	if *sqlitePath != "" {
		st, err = store.OpenSQLiteStore(*sqlitePath, 4, logger)
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

	in := os.Stdin
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Fatalf("open input: %v", err)
		}
		defer f.Close()
		in = f
	}

	logger.Info("batch normalize starting")
	processed, failed := runBatch(in, os.Stdout, engine, logger)
	logger.Info("batch normalize finished", zap.Int("processed", processed), zap.Int("failed", failed))
}

func runBatch(in io.Reader, out io.Writer, engine *pipeline.Pipeline, logger *zap.Logger) (processed, failed int) {
	ctx := context.Background()
	scanner := bufio.NewScanner(in)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		result, err := engine.Normalize(ctx, line, pipeline.Hints{})
		if err != nil {
			logger.Warn("skipping unprocessable line", zap.String("line", line), zap.Error(err))
			failed++
			continue
		}
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(os.Stderr, "write result:", err)
		}
		processed++
	}
	return processed, failed
}
