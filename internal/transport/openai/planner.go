package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nearby/internal/domain"
	"github.com/kailas-cloud/nearby/internal/metrics"
)

const emitQueriesTool = "emit_search_queries"

const plannerSystemPrompt = `You help a local business search engine find places that match what a person is looking for.
Rewrite the request into short search phrases a maps places search understands: business types,
products or services, two to five words each, no locations, no punctuation.
Always answer by calling the ` + emitQueriesTool + ` tool.`

// Planner asks a chat model for short places-search phrases through a forced tool call.
type Planner struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// PlannerConfig holds the chat model settings.
type PlannerConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

// NewPlanner creates a query planner backed by an OpenAI-compatible chat API.
func NewPlanner(cfg *PlannerConfig) *Planner {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Plan returns up to n distinct phrases for query. Output that does not parse into at least
// one phrase is reported as domain.ErrPlannerOutput.
func (p *Planner) Plan(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: plannerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Request: %s\nReturn exactly %d phrases.", query, n)},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        emitQueriesTool,
				Description: "Emit the search phrases for the places search.",
				Parameters:  queriesSchema(n),
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: emitQueriesTool},
		},
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	metrics.ObserveExternal("planner", start, err)
	if err != nil {
		return nil, fmt.Errorf("planner request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("planner returned no choices: %w", domain.ErrPlannerOutput)
	}

	msg := resp.Choices[0].Message
	raw := msg.Content
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name == emitQueriesTool {
			raw = tc.Function.Arguments
			break
		}
	}

	phrases, err := parsePhrases(raw, n)
	if err != nil {
		p.logger.Warn("Unparsable planner output", zap.String("raw", raw), zap.Error(err))
		return nil, err
	}
	p.logger.Debug("Planned search phrases",
		zap.Strings("phrases", phrases),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return phrases, nil
}

func queriesSchema(n int) jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"queries": {
				Type:        jsonschema.Array,
				Description: fmt.Sprintf("Up to %d short places search phrases", n),
				Items:       &jsonschema.Definition{Type: jsonschema.String},
			},
		},
		Required: []string{"queries"},
	}
}

// parsePhrases decodes {"queries": [...]}, trims, drops blanks and case-insensitive duplicates,
// and keeps at most n.
func parsePhrases(raw string, n int) ([]string, error) {
	var args struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &args); err != nil {
		return nil, fmt.Errorf("decode planner arguments: %v: %w", err, domain.ErrPlannerOutput)
	}

	seen := make(map[string]struct{}, len(args.Queries))
	out := make([]string, 0, min(n, len(args.Queries)))
	for _, q := range args.Queries {
		q = strings.Join(strings.Fields(q), " ")
		if q == "" {
			continue
		}
		k := strings.ToLower(q)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, q)
		if len(out) == n {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("planner returned no phrases: %w", domain.ErrPlannerOutput)
	}
	return out, nil
}
