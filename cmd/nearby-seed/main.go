// Catalog seed tool for nearby.
// Reads businesses with their offerings, embeds every offering with the
// configured document instruction and writes both into the catalog index.
//
// Usage:
//
//	ENV=local nearby-seed -file businesses.jsonl -workers 4
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/nearby/internal/config"
	dbRedis "github.com/kailas-cloud/nearby/internal/db/redis"
	"github.com/kailas-cloud/nearby/internal/domain"
	"github.com/kailas-cloud/nearby/internal/domain/business"
	logpkg "github.com/kailas-cloud/nearby/internal/logger"
	"github.com/kailas-cloud/nearby/internal/repository/catalog"
	openaiTransport "github.com/kailas-cloud/nearby/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/nearby/internal/usecase/embedding"
)

type flags struct {
	file      string
	batchSize int
	workers   int
}

func main() {
	var f flags
	flag.StringVar(&f.file, "file", "", "input file (.jsonl or .parquet)")
	flag.IntVar(&f.batchSize, "batch-size", 20, "businesses per write batch")
	flag.IntVar(&f.workers, "workers", 4, "parallel batches")
	flag.Parse()

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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, &cfg, f, logger); err != nil {
		logger.Fatal("Seed failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, f flags, logger *zap.Logger) error {
	if f.file == "" {
		return errors.New("-file is required")
	}
	start := time.Now()

	businesses, err := readBusinesses(f.file)
	if err != nil {
		return err
	}
	logger.Info("Loaded input", zap.String("file", f.file), zap.Int("businesses", len(businesses)))

	vecCfg, provCfg := cfg.QueryVectorizer()
	if provCfg.APIKey == "" {
		return domain.NewMissingConfig("embedding provider credential")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	repo := catalog.New(store, vecCfg.Dimensions)
	if err := repo.EnsureIndex(ctx); err != nil {
		return err
	}

	var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(
		openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     provCfg.APIKey,
			BaseURL:    provCfg.BaseURL,
			Model:      vecCfg.Model,
			Dimensions: vecCfg.Dimensions,
			Provider:   vecCfg.Provider,
			Logger:     logger,
		}),
		vecCfg.Provider, vecCfg.Model, cfg.Embedding.MaxBatch, logger,
	)
	if vecCfg.DocumentInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, vecCfg.DocumentInstruction)
	}

	s := &seeder{repo: repo, embedder: embedder}
	offerings, err := s.seedAll(ctx, businesses, f.batchSize, f.workers)
	if err != nil {
		return err
	}

	logger.Info("Seed complete",
		zap.Int("businesses", len(businesses)),
		zap.Int("offerings", offerings),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

type catalogWriter interface {
	PutBusinesses(ctx context.Context, businesses []business.Business) error
	PutOfferings(ctx context.Context, offerings []catalog.Offering) error
}

type seeder struct {
	repo     catalogWriter
	embedder domain.Embedder
}

// seedAll writes businesses in batches, at most workers batches at a time.
// Returns the number of offerings written.
func (s *seeder) seedAll(ctx context.Context, businesses []seedBusiness, batchSize, workers int) (int, error) {
	batchSize = max(1, batchSize)
	nBatches := (len(businesses) + batchSize - 1) / batchSize
	counts := make([]int, nBatches)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for i := range nBatches {
		lo := i * batchSize
		hi := min(lo+batchSize, len(businesses))
		g.Go(func() error {
			n, err := s.seedBatch(gctx, businesses[lo:hi])
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

func (s *seeder) seedBatch(ctx context.Context, batch []seedBusiness) (int, error) {
	details := make([]business.Business, len(batch))
	var offerings []catalog.Offering
	for i := range batch {
		details[i] = batch[i].business()
		offerings = append(offerings, batch[i].offerings()...)
	}

	if len(offerings) > 0 {
		texts := make([]string, len(offerings))
		for i := range offerings {
			texts[i] = embedText(&offerings[i])
		}
		res, err := domain.EmbedAll(ctx, s.embedder, texts)
		if err != nil {
			return 0, fmt.Errorf("embed offerings: %w", err)
		}
		for i := range offerings {
			offerings[i].Vector = res.Embeddings[i]
		}
	}

	if err := s.repo.PutBusinesses(ctx, details); err != nil {
		return 0, err
	}
	if len(offerings) == 0 {
		return 0, nil
	}
	if err := s.repo.PutOfferings(ctx, offerings); err != nil {
		return 0, err
	}
	return len(offerings), nil
}
