package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the nearby API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Planner   PlannerConfig   `yaml:"planner"`
	Places    MapsConfig      `yaml:"places"`
	Distance  MapsConfig      `yaml:"distance"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Search    SearchConfig    `yaml:"search"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding settings. Query names the vectorizer used for
// search queries and discovered-place descriptions.
type EmbeddingConfig struct {
	Providers   map[string]ProviderConfig   `yaml:"providers"`
	Vectorizers map[string]VectorizerConfig `yaml:"vectorizers"`
	Query       string                      `yaml:"query"`
	CacheTTLSec int                         `yaml:"cache_ttl_sec"` // 0 disables the cache
	MaxBatch    int                         `yaml:"max_batch"`
}

// ProviderConfig holds an OpenAI-compatible provider endpoint.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// VectorizerConfig holds vectorizer settings.
type VectorizerConfig struct {
	Provider            string `yaml:"provider"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
}

// PlannerConfig holds the query planner chat model. An empty provider disables discovery.
type PlannerConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// MapsConfig holds Google Maps API settings. An empty key disables the component.
type MapsConfig struct {
	APIKey            string `yaml:"api_key"`
	BaseURL           string `yaml:"base_url"`
	RequestsPerSecond int    `yaml:"requests_per_second"`
}

// CatalogConfig holds catalog index settings.
type CatalogConfig struct {
	EnsureIndex bool `yaml:"ensure_index"`
}

// WeightsConfig holds the composite score weights.
type WeightsConfig struct {
	Similarity float64 `yaml:"similarity"`
	Source     float64 `yaml:"source"`
	Open       float64 `yaml:"open"`
	Proximity  float64 `yaml:"proximity"`
}

// SearchConfig holds pipeline tuning. Zero values fall back to built-in defaults.
type SearchConfig struct {
	CatalogThreshold        float64       `yaml:"catalog_threshold"`
	CatalogLimit            int           `yaml:"catalog_limit"`
	CatalogSlots            int           `yaml:"catalog_slots"`
	MaxQueries              int           `yaml:"max_queries"`
	PlacesPerPhrase         int           `yaml:"places_per_phrase"`
	BranchTimeoutMs         int           `yaml:"branch_timeout_ms"`
	RequestTimeoutMs        int           `yaml:"request_timeout_ms"`
	DiscoveryRadiusMiles    float64       `yaml:"discovery_radius_miles"`
	DefaultLatitude         *float64      `yaml:"default_latitude"`
	DefaultLongitude        *float64      `yaml:"default_longitude"`
	MinDiscoveredSimilarity float64       `yaml:"min_discovered_similarity"`
	MaxRadiusMiles          float64       `yaml:"max_radius_miles"`
	ProximityCapMiles       float64       `yaml:"proximity_cap_miles"`
	// Ranking fields are pointers so an explicit zero is not replaced by the default.
	Weights                *WeightsConfig `yaml:"weights"`
	RankingBoostThreshold  *float64       `yaml:"ranking_boost_threshold"`
	BaselineSourcePriority *float64       `yaml:"baseline_source_priority"`
}

// RateLimitConfig holds sliding-window rules keyed by function name.
type RateLimitConfig struct {
	Store   string                `yaml:"store"` // redis, memory (default: redis)
	MaxKeys int                   `yaml:"max_keys"`
	Rules   map[string]RuleConfig `yaml:"rules"`
}

// RuleConfig is one rate-limit rule.
type RuleConfig struct {
	Max       int `yaml:"max"`
	WindowSec int `yaml:"window_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Query == "" && len(c.Embedding.Vectorizers) == 1 {
		for name := range c.Embedding.Vectorizers {
			c.Embedding.Query = name
		}
	}
	if c.Embedding.MaxBatch <= 0 {
		c.Embedding.MaxBatch = 64
	}
	if c.Planner.Model == "" {
		c.Planner.Model = "gpt-4o-mini"
	}
	if c.Distance.APIKey == "" {
		c.Distance.APIKey = c.Places.APIKey
	}
	if c.RateLimit.Store == "" {
		c.RateLimit.Store = "redis"
	}
	if c.RateLimit.MaxKeys <= 0 {
		c.RateLimit.MaxKeys = 10000
	}
	if c.RateLimit.Rules == nil {
		c.RateLimit.Rules = map[string]RuleConfig{"search": {Max: 30, WindowSec: 60}}
	}
}

// Validate checks the configuration for correctness. Missing API keys are not
// errors here: the affected component is disabled or reports itself unconfigured.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required")
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if p := c.Planner.Provider; p != "" {
		if _, ok := c.Embedding.Providers[p]; !ok {
			return fmt.Errorf("planner.provider %q is not a configured embedding provider", p)
		}
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	switch c.RateLimit.Store {
	case "redis", "memory":
	default:
		return fmt.Errorf("rate_limit.store must be \"redis\" or \"memory\", got %q", c.RateLimit.Store)
	}
	for name, r := range c.RateLimit.Rules {
		if r.Max <= 0 || r.WindowSec <= 0 {
			return fmt.Errorf("rate_limit.rules.%s: max and window_sec must be positive", name)
		}
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	for name, v := range c.Embedding.Vectorizers {
		if _, ok := c.Embedding.Providers[v.Provider]; !ok {
			return fmt.Errorf("embedding.vectorizers.%s.provider %q is not configured", name, v.Provider)
		}
		if v.Dimensions <= 0 {
			return fmt.Errorf("embedding.vectorizers.%s.dimensions must be positive", name)
		}
	}
	if c.Embedding.Query == "" {
		return errors.New("embedding.query must name a vectorizer")
	}
	if _, ok := c.Embedding.Vectorizers[c.Embedding.Query]; !ok {
		return fmt.Errorf("embedding.query %q is not a configured vectorizer", c.Embedding.Query)
	}
	return nil
}

func (c *Config) validateSearch() error {
	s := c.Search
	if s.CatalogThreshold < 0 || s.CatalogThreshold > 1 {
		return fmt.Errorf("search.catalog_threshold must be within [0,1], got %v", s.CatalogThreshold)
	}
	if s.MinDiscoveredSimilarity < 0 || s.MinDiscoveredSimilarity > 1 {
		return fmt.Errorf("search.min_discovered_similarity must be within [0,1], got %v", s.MinDiscoveredSimilarity)
	}
	if w := s.Weights; w != nil && (w.Similarity < 0 || w.Source < 0 || w.Open < 0 || w.Proximity < 0) {
		return errors.New("search.weights must not be negative")
	}
	if v := s.RankingBoostThreshold; v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("search.ranking_boost_threshold must be within [0,1], got %v", *v)
	}
	if v := s.BaselineSourcePriority; v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("search.baseline_source_priority must be within [0,1], got %v", *v)
	}
	if (s.DefaultLatitude == nil) != (s.DefaultLongitude == nil) {
		return errors.New("search.default_latitude and search.default_longitude must be set together")
	}
	if s.DefaultLatitude != nil && (*s.DefaultLatitude < -90 || *s.DefaultLatitude > 90 ||
		*s.DefaultLongitude < -180 || *s.DefaultLongitude > 180) {
		return errors.New("search default location is out of range")
	}
	return nil
}

// QueryVectorizer returns the vectorizer used for search and its provider.
func (c *Config) QueryVectorizer() (VectorizerConfig, ProviderConfig) {
	v := c.Embedding.Vectorizers[c.Embedding.Query]
	return v, c.Embedding.Providers[v.Provider]
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
