package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort     string   `mapstructure:"SERVER_PORT"`
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	// CacheBackend is "memory" or "redis".
	CacheBackend string `mapstructure:"CACHE_BACKEND"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	// PostgresURL enables the search-history store when non-empty.
	PostgresURL string `mapstructure:"POSTGRES_URL"`

	CacheTTLSeconds      int `mapstructure:"CACHE_TTL"`
	CacheMaxSize         int `mapstructure:"CACHE_MAX_SIZE"`
	SearchTimeoutSeconds int `mapstructure:"SEARCH_TIMEOUT"`
	FetchTimeoutSeconds  int `mapstructure:"FETCH_TIMEOUT"`
	MaxLinksPerSource    int `mapstructure:"MAX_LINKS_PER_SOURCE"`
	MaxCountryConc       int `mapstructure:"MAX_COUNTRY_CONCURRENCY"`

	DedupPolicy string  `mapstructure:"DEDUP_POLICY"`
	ClientRPS   float64 `mapstructure:"CLIENT_RPS"`

	// Derived durations, populated by Load.
	CacheTTL      time.Duration `mapstructure:"-"`
	SearchTimeout time.Duration `mapstructure:"-"`
	FetchTimeout  time.Duration `mapstructure:"-"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not
	// present so production can configure purely through env vars.
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("CACHE_BACKEND", "memory")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("CACHE_TTL", 1800) // in seconds
	viper.SetDefault("CACHE_MAX_SIZE", 5000)
	viper.SetDefault("SEARCH_TIMEOUT", 45)
	viper.SetDefault("FETCH_TIMEOUT", 15)
	viper.SetDefault("MAX_LINKS_PER_SOURCE", 10)
	viper.SetDefault("MAX_COUNTRY_CONCURRENCY", 3)
	viper.SetDefault("DEDUP_POLICY", "similarity")
	viper.SetDefault("CLIENT_RPS", 2.0)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	cfg.SearchTimeout = time.Duration(cfg.SearchTimeoutSeconds) * time.Second
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	return &cfg, nil
}
