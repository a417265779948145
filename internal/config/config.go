package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FieldRuleConfig configures cluster selection for one profile field.
type FieldRuleConfig struct {
	MinSources    int                `toml:"min_sources"`
	Threshold     float64            `toml:"threshold"`
	SourceWeights map[string]float64 `toml:"source_weights"`
	DefaultWeight float64            `toml:"default_weight"`
}

type VerificationConfig struct {
	Name           FieldRuleConfig `toml:"name"`
	ContactAddress FieldRuleConfig `toml:"contact_address"`
	Organization   FieldRuleConfig `toml:"organization"`
	Position       FieldRuleConfig `toml:"position"`
}

type RankingConfig struct {
	Weights  map[string]float64            `toml:"weights"`
	Contexts map[string]map[string]float64 `toml:"contexts"`
	GroupGap float64                       `toml:"group_gap"`
}

type SemanticConfig struct {
	// Embeddings enables embedding similarity through the configured LLM provider.
	Embeddings bool `toml:"embeddings"`
	// LLMContext lets the LLM refine the inferred research context phrase.
	LLMContext bool `toml:"llm_context"`
	// CacheSize bounds memoized embeddings; 0 uses the default.
	CacheSize int `toml:"cache_size"`
}

type EnrichmentConfig struct {
	// ProfilesPath points to a JSON file of identifier → external profile.
	ProfilesPath string `toml:"profiles_path"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type FeedbackConfig struct {
	Driver string `toml:"driver"` // memory | sqlite
	Path   string `toml:"path"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	Verification VerificationConfig `toml:"verification"`
	Ranking      RankingConfig      `toml:"ranking"`
	Semantic     SemanticConfig     `toml:"semantic"`
	Enrichment   EnrichmentConfig   `toml:"enrichment"`
	LLM          LLMConfig          `toml:"llm"`
	Memgraph     MemgraphConfig     `toml:"memgraph"`
	Feedback     FeedbackConfig     `toml:"feedback"`
	Logging      LoggingConfig      `toml:"logging"`
	Server       ServerConfig       `toml:"server"`
}

// Default returns the configuration used when no file is given. Verification
// rules and ranking weights left empty fall back to the built-in tables.
func Default() *Config {
	return &Config{
		Ranking:  RankingConfig{GroupGap: 0.05},
		Feedback: FeedbackConfig{Driver: "memory"},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
		Server:   ServerConfig{Port: "8080"},
	}
}

// Load reads a TOML file over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides selected settings from environment variables.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.LLM.Provider, "LLM_PROVIDER")
	set(&c.LLM.Model, "LLM_MODEL")
	set(&c.LLM.EmbeddingModel, "LLM_EMBEDDING_MODEL")
	set(&c.LLM.APIKey, "LLM_API_KEY")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")
	set(&c.Memgraph.URI, "MEMGRAPH_URI")
	set(&c.Memgraph.User, "MEMGRAPH_USER")
	set(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
	set(&c.Feedback.Driver, "FEEDBACK_DRIVER")
	set(&c.Feedback.Path, "FEEDBACK_PATH")
	set(&c.Logging.Level, "LOG_LEVEL")
	set(&c.Server.Port, "PORT")
}
