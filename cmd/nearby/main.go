package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nearby/internal/config"
	dbRedis "github.com/kailas-cloud/nearby/internal/db/redis"
	"github.com/kailas-cloud/nearby/internal/domain"
	"github.com/kailas-cloud/nearby/internal/domain/geo"
	domrl "github.com/kailas-cloud/nearby/internal/domain/ratelimit"
	logpkg "github.com/kailas-cloud/nearby/internal/logger"
	"github.com/kailas-cloud/nearby/internal/metrics"
	catalogrepo "github.com/kailas-cloud/nearby/internal/repository/catalog"
	"github.com/kailas-cloud/nearby/internal/repository/embcache"
	ratelimitrepo "github.com/kailas-cloud/nearby/internal/repository/ratelimit"
	chiTransport "github.com/kailas-cloud/nearby/internal/transport/chi"
	"github.com/kailas-cloud/nearby/internal/transport/googlemaps"
	openaiTransport "github.com/kailas-cloud/nearby/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/nearby/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/nearby/internal/usecase/health"
	ratelimituc "github.com/kailas-cloud/nearby/internal/usecase/ratelimit"
	searchuc "github.com/kailas-cloud/nearby/internal/usecase/search"
	"github.com/kailas-cloud/nearby/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting nearby API server",
		zap.String("build", version.String()),
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	vecCfg, provCfg := cfg.QueryVectorizer()

	catalog := catalogrepo.New(store, vecCfg.Dimensions)
	if cfg.Catalog.EnsureIndex {
		if err := catalog.EnsureIndex(ctx); err != nil {
			logger.Fatal("Failed to ensure catalog index", zap.Error(err))
		}
	}

	// Pass a nil interface (not a typed nil pointer) when the credential is missing,
	// so the search service reports a configuration error per request.
	var queryEmbedder searchuc.Embedder
	var baseEmbedder *openaiTransport.Embedder
	opts := []searchuc.Option{}
	if provCfg.APIKey != "" {
		baseEmbedder = newBaseEmbedder(vecCfg.Provider, provCfg, vecCfg, logger)
		query, document := buildEmbedders(baseEmbedder, &cfg, vecCfg, store, logger)
		queryEmbedder = query
		opts = append(opts, searchuc.WithDocumentEmbedder(document))
		logger.Info("Embedder created",
			zap.String("provider", vecCfg.Provider),
			zap.String("model", vecCfg.Model),
			zap.Int("dimensions", vecCfg.Dimensions),
		)
	} else {
		logger.Warn("Embedding provider credential missing, search requests will fail",
			zap.String("provider", vecCfg.Provider))
	}

	if planner, places := buildDiscovery(&cfg, logger); planner != nil && places != nil {
		opts = append(opts, searchuc.WithDiscovery(planner, places))
		logger.Info("Discovery enabled", zap.String("planner_model", cfg.Planner.Model))
	} else {
		logger.Info("Discovery disabled")
	}
	opts = append(opts, searchuc.WithDistances(buildDistances(&cfg, logger)))

	searchSvc := searchuc.New(queryEmbedder, catalog, buildTuning(&cfg.Search), opts...)

	limiter := buildLimiter(&cfg, store)

	components := []healthuc.Component{healthuc.Database(store)}
	if baseEmbedder != nil {
		components = append(components, healthuc.Embedding(baseEmbedder))
	}
	healthSvc := healthuc.New(healthuc.DefaultTimeout, components...)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger, chiTransport.WithRateLimiter(limiter))

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func newBaseEmbedder(
	provName string, provCfg config.ProviderConfig, vecCfg config.VectorizerConfig, logger *zap.Logger,
) *openaiTransport.Embedder {
	return openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     provCfg.APIKey,
		BaseURL:    provCfg.BaseURL,
		Model:      vecCfg.Model,
		Dimensions: vecCfg.Dimensions,
		Provider:   provName,
		Logger:     logger,
	})
}

// buildEmbedders assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
// The query and document embedders share everything but the instruction prefix.
func buildEmbedders(
	base *openaiTransport.Embedder,
	cfg *config.Config,
	vecCfg config.VectorizerConfig,
	store *dbRedis.Store,
	logger *zap.Logger,
) (query, document domain.Embedder) {
	var embedder domain.Embedder = base
	if cfg.Embedding.CacheTTLSec > 0 {
		embedder = embcache.New(base, store, vecCfg.Model,
			time.Duration(cfg.Embedding.CacheTTLSec)*time.Second, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, vecCfg.Provider, vecCfg.Model, cfg.Embedding.MaxBatch, logger,
	)

	// Instruction prefix (outermost, so the cache key includes it)
	return withInstruction(embedder, vecCfg.QueryInstruction),
		withInstruction(embedder, vecCfg.DocumentInstruction)
}

func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

// buildDiscovery returns nil collaborators when the planner or places credential is missing.
func buildDiscovery(cfg *config.Config, logger *zap.Logger) (searchuc.Planner, searchuc.PlaceFinder) {
	if cfg.Planner.Provider == "" || cfg.Places.APIKey == "" {
		return nil, nil
	}
	prov := cfg.Embedding.Providers[cfg.Planner.Provider]
	if prov.APIKey == "" {
		return nil, nil
	}

	places, err := googlemaps.NewPlaces(&googlemaps.Config{
		APIKey:            cfg.Places.APIKey,
		BaseURL:           cfg.Places.BaseURL,
		RequestsPerSecond: cfg.Places.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		logger.Error("Places client unavailable, discovery disabled", zap.Error(err))
		return nil, nil
	}

	planner := openaiTransport.NewPlanner(&openaiTransport.PlannerConfig{
		APIKey:      prov.APIKey,
		BaseURL:     prov.BaseURL,
		Model:       cfg.Planner.Model,
		Temperature: cfg.Planner.Temperature,
		Logger:      logger,
	})
	return planner, places
}

// buildDistances falls back to straight-line distance when no Distance Matrix key is set.
func buildDistances(cfg *config.Config, logger *zap.Logger) searchuc.DistanceService {
	if cfg.Distance.APIKey == "" {
		logger.Info("Distance Matrix not configured, using straight-line distances")
		return searchuc.StraightLine{}
	}
	d, err := googlemaps.NewDistances(&googlemaps.Config{
		APIKey:            cfg.Distance.APIKey,
		BaseURL:           cfg.Distance.BaseURL,
		RequestsPerSecond: cfg.Distance.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		logger.Error("Distance Matrix client unavailable, using straight-line distances", zap.Error(err))
		return searchuc.StraightLine{}
	}
	return d
}

func buildTuning(s *config.SearchConfig) searchuc.Tuning {
	t := searchuc.Tuning{
		CatalogThreshold:        s.CatalogThreshold,
		CatalogLimit:            s.CatalogLimit,
		CatalogSlots:            s.CatalogSlots,
		MaxQueries:              s.MaxQueries,
		PlacesPerPhrase:         s.PlacesPerPhrase,
		BranchTimeout:           time.Duration(s.BranchTimeoutMs) * time.Millisecond,
		RequestTimeout:          time.Duration(s.RequestTimeoutMs) * time.Millisecond,
		DiscoveryRadiusMiles:    s.DiscoveryRadiusMiles,
		MinDiscoveredSimilarity: s.MinDiscoveredSimilarity,
		MaxRadiusMiles:          s.MaxRadiusMiles,
		ProximityCapMiles:       s.ProximityCapMiles,
		RankingBoostThreshold:  s.RankingBoostThreshold,
		BaselineSourcePriority: s.BaselineSourcePriority,
	}
	if w := s.Weights; w != nil {
		t.Weights = &searchuc.Weights{
			Similarity: w.Similarity,
			Source:     w.Source,
			Open:       w.Open,
			Proximity:  w.Proximity,
		}
	}
	if s.DefaultLatitude != nil {
		t.DefaultLocation = geo.Point{Lat: *s.DefaultLatitude, Lng: *s.DefaultLongitude}
	}
	return t
}

func buildLimiter(cfg *config.Config, store *dbRedis.Store) *ratelimituc.Service {
	rules := make(map[string]domrl.Rule, len(cfg.RateLimit.Rules))
	var window time.Duration
	for name, r := range cfg.RateLimit.Rules {
		rule := domrl.Rule{Max: r.Max, Window: time.Duration(r.WindowSec) * time.Second}
		rules[name] = rule
		window = max(window, rule.Window)
	}

	var rlStore ratelimituc.Store
	switch cfg.RateLimit.Store {
	case "memory":
		rlStore = ratelimitrepo.NewMemoryStore(cfg.RateLimit.MaxKeys, window)
	default:
		rlStore = ratelimitrepo.NewRedisStore(store, window)
	}
	return ratelimituc.New(rlStore, rules)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error":     "internal_error",
						"message":   "internal error",
						"timestamp": time.Now().UTC().Format(time.RFC3339),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
