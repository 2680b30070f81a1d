package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	vcache "github.com/vnaddrnorm/core/internal/cache"
	"github.com/vnaddrnorm/core/internal/config"
	"github.com/vnaddrnorm/core/internal/geocoder"
	"github.com/vnaddrnorm/core/internal/normalizer"
	"github.com/vnaddrnorm/core/internal/pipeline"
	"github.com/vnaddrnorm/core/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("starting vnaddrnorm core service")

	cfg, err := config.Load(configPath())
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	referenceStore, err := newStore(logger)
	if err != nil {
		logger.Fatal("failed to open reference store", zap.Error(err))
	}

	norm, err := normalizer.NewNormalizer(referenceStore, cfg.NormalizationCacheSize, logger)
	if err != nil {
		logger.Fatal("failed to build normalizer", zap.Error(err))
	}

	resultCache, err := newCache(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to build cache", zap.Error(err))
	}

	var geo geocoder.Geocoder
	if url := os.Getenv("VNADDR_GEOCODER_URL"); url != "" {
		geo = geocoder.NewHTTPGeocoder(url, time.Duration(cfg.ExternalTimeoutMs)*time.Millisecond, logger)
	}

	engine := pipeline.New(referenceStore, norm, store.NoopMigrationLoader{}, geo, resultCache, cfg, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.POST("/v1/addresses:normalize", normalizeHandler(engine, logger))

	srv := &http.Server{Addr: ":" + getPort(), Handler: router}
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server exited")
}

// requestIDMiddleware stamps every response with an X-Request-Id,
// generating one with google/uuid when the caller didn't supply it.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

type normalizeRequest struct {
	Address      string `json:"address" binding:"required"`
	ProvinceHint string `json:"province_hint"`
	DistrictHint string `json:"district_hint"`
}

func normalizeHandler(engine *pipeline.Pipeline, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req normalizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "input_invalid", "detail": err.Error()})
			return
		}

		result, err := engine.Normalize(c.Request.Context(), req.Address, pipeline.Hints{
			ProvinceHint: req.ProvinceHint,
			DistrictHint: req.DistrictHint,
		})
		if err != nil {
			logger.Warn("normalize failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func newStore(logger *zap.Logger) (store.Store, error) {
	if path := os.Getenv("VNADDR_SQLITE_PATH"); path != "" {
		return store.OpenSQLiteStore(path, 8, logger)
	}
	return store.NewMemoryStore(logger)
}

// newCache builds the L1 LRU tier plus, if configured, a distributed or
// persistent L2: VNADDR_REDIS_URL takes priority (lower latency, matching
// the teacher's default HybridCacheService pairing); VNADDR_MONGO_URI is
// the fallback persistent tier, adapted from the teacher's
// MongoCacheService for deployments without Redis.
func newCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (vcache.Cache, error) {
	l1, err := vcache.NewLRUTier(cfg.NormalizationCacheSize, logger)
	if err != nil {
		return nil, err
	}

	if redisURL := os.Getenv("VNADDR_REDIS_URL"); redisURL != "" {
		l2, err := vcache.NewRedisTier(redisURL, 24*time.Hour, logger)
		if err != nil {
			logger.Warn("redis tier unavailable, running L1-only", zap.Error(err))
			return l1, nil
		}
		return vcache.NewHybridCache(l1, l2, logger), nil
	}

	if mongoURI := os.Getenv("VNADDR_MONGO_URI"); mongoURI != "" {
		mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(mctx, options.Client().ApplyURI(mongoURI))
		if err != nil {
			logger.Warn("mongo cache tier unavailable, running L1-only", zap.Error(err))
			return l1, nil
		}
		db := client.Database(mongoDatabaseName())
		l2, err := vcache.NewMongoTier(mctx, db, "address_cache", logger)
		if err != nil {
			logger.Warn("mongo cache tier unavailable, running L1-only", zap.Error(err))
			return l1, nil
		}
		return vcache.NewHybridCache(l1, l2, logger), nil
	}

	return l1, nil
}

func mongoDatabaseName() string {
	if n := os.Getenv("VNADDR_MONGO_DB"); n != "" {
		return n
	}
	return "vnaddrnorm"
}

func configPath() string {
	if p := os.Getenv("VNADDR_CONFIG"); p != "" {
		return p
	}
	return "config/vnaddrnorm.yaml"
}

func getPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}
