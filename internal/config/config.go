package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/oselz/ai-gateway/internal/core/domain"
)

type Config struct {
	Server    ServerConfig         `mapstructure:"server"`
	Router    domain.RouterOptions `mapstructure:"router"`
	RateLimit RateLimitConfig      `mapstructure:"rate_limit"`
	Redis     RedisConfig          `mapstructure:"redis"`
	Store     StoreConfig          `mapstructure:"store"`
	Cache     CacheConfig          `mapstructure:"cache"`
	Tracing   TracingConfig        `mapstructure:"tracing"`

	// Credentials are resolved from the process environment, never from
	// the config file.
	Credentials Credentials `mapstructure:"-"`
}

type ServerConfig struct {
	Port    string   `mapstructure:"port"`
	Env     string   `mapstructure:"env"`
	APIKeys []string `mapstructure:"api_keys"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type CacheConfig struct {
	ImageTTL time.Duration `mapstructure:"image_ttl"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Credentials holds every provider secret the gateway recognizes. A
// provider is available if and only if its credential is non-empty.
type Credentials struct {
	OpenAIKey        string
	OpenAIBaseURL    string
	AnthropicKey     string
	AnthropicBaseURL string
	OllamaBaseURL    string
	ReplicateToken   string
	DeepgramKey      string
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	}

	// Default Values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("router.default_provider", domain.AutoProvider)
	v.SetDefault("router.fallback", true)
	v.SetDefault("router.cost_optimization", false)
	v.SetDefault("router.load_balancing", false)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("store.enabled", false)
	v.SetDefault("store.dsn", "file:gateway.db?_journal_mode=WAL&_busy_timeout=5000")
	v.SetDefault("cache.image_ttl", time.Hour)
	v.SetDefault("tracing.enabled", false)

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	cfg.Credentials = Credentials{
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
		OllamaBaseURL:    os.Getenv("OLLAMA_BASE_URL"),
		ReplicateToken:   os.Getenv("REPLICATE_API_TOKEN"),
		DeepgramKey:      os.Getenv("DEEPGRAM_API_KEY"),
	}

	return &cfg, nil
}

// ChatProviderConfigs returns one ProviderConfig per chat provider whose
// credential is present, in catalog declaration order. This is the
// credential-presence check: a pure function of process configuration.
func (c *Config) ChatProviderConfigs() []domain.ProviderConfig {
	var out []domain.ProviderConfig

	if c.Credentials.AnthropicKey != "" {
		out = append(out, domain.ProviderConfig{
			ID:      "anthropic",
			Type:    "anthropic",
			Name:    "Anthropic",
			APIKey:  c.Credentials.AnthropicKey,
			BaseURL: c.Credentials.AnthropicBaseURL,
		})
	}
	if c.Credentials.OllamaBaseURL != "" {
		out = append(out, domain.ProviderConfig{
			ID:      "ollama",
			Type:    "ollama",
			Name:    "Ollama (local)",
			BaseURL: c.Credentials.OllamaBaseURL,
		})
	}
	if c.Credentials.OpenAIKey != "" {
		out = append(out, domain.ProviderConfig{
			ID:      "openai",
			Type:    "openai",
			Name:    "OpenAI",
			APIKey:  c.Credentials.OpenAIKey,
			BaseURL: c.Credentials.OpenAIBaseURL,
		})
	}

	return out
}

// ImageProviderConfig returns the Replicate configuration when its token is set.
func (c *Config) ImageProviderConfig() (domain.ProviderConfig, bool) {
	if c.Credentials.ReplicateToken == "" {
		return domain.ProviderConfig{}, false
	}
	return domain.ProviderConfig{
		ID:     "replicate",
		Type:   "replicate",
		Name:   "Replicate",
		APIKey: c.Credentials.ReplicateToken,
	}, true
}

// TranscriberConfig returns the Deepgram configuration when its key is set.
func (c *Config) TranscriberConfig() (domain.ProviderConfig, bool) {
	if c.Credentials.DeepgramKey == "" {
		return domain.ProviderConfig{}, false
	}
	return domain.ProviderConfig{
		ID:     "deepgram",
		Type:   "deepgram",
		Name:   "Deepgram",
		APIKey: c.Credentials.DeepgramKey,
	}, true
}
