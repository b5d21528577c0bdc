// Package embedding decorates embedding providers with logging and batching limits.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nearby/internal/domain"
)

// DefaultMaxAPIBatchSize is the largest number of texts sent in one provider call.
const DefaultMaxAPIBatchSize = 256

// InstrumentedEmbedder wraps an Embedder with logging, empty-vector checks and
// batch chunking. Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	maxBatch int
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder. maxBatch <= 0 uses DefaultMaxAPIBatchSize.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string, maxBatch int, logger *zap.Logger,
) *InstrumentedEmbedder {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxAPIBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		maxBatch: maxBatch,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder and rejects empty vectors.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := p.inner.Embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	if len(result.Embedding) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: empty vector: %w", domain.ErrEmbeddingProviderError)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// BatchEmbed splits texts into provider-sized chunks and delegates each.
func (p *InstrumentedEmbedder) BatchEmbed(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()

	result, err := p.embedChunked(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

func (p *InstrumentedEmbedder) embedChunked(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}

	for offset := 0; offset < len(texts); offset += p.maxBatch {
		end := min(offset+p.maxBatch, len(texts))
		chunk := texts[offset:end]

		res, err := domain.EmbedAll(ctx, p.inner, chunk)
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}

		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	return out, nil
}
