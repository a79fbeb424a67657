package model

import "time"

// Config holds all runtime configuration. Field tags serve both viper
// (mapstructure) and the YAML rendering used by `vigil config`.
type Config struct {
	Dictionary  DictionaryConfig  `mapstructure:"dictionary" yaml:"dictionary"`
	Store       StoreConfig       `mapstructure:"store" yaml:"store"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Speech      SpeechConfig      `mapstructure:"speech" yaml:"speech"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	Metrics     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
}

// DictionaryConfig selects keyword dictionaries
type DictionaryConfig struct {
	Path         string `mapstructure:"path" yaml:"path"`                   // YAML file; empty = built-in dictionaries
	BaseLanguage string `mapstructure:"base_language" yaml:"base_language"` // Fallback and translation target
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // sqlite, memory
	Path   string `mapstructure:"path" yaml:"path"`     // sqlite database file
}

// CacheConfig controls caching of stored analysis records
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Dir     string        `mapstructure:"dir" yaml:"dir"`
}

// SpeechConfig configures the speech-to-text and translation engines
type SpeechConfig struct {
	Provider          string        `mapstructure:"provider" yaml:"provider"` // mock, openai
	Fallback          string        `mapstructure:"fallback" yaml:"fallback"` // engine used when the provider fails; empty = none
	Model             string        `mapstructure:"model" yaml:"model"`
	TranslationModel  string        `mapstructure:"translation_model" yaml:"translation_model"`
	APIKey            string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
	HTTPProxy         string        `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy        string        `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
	NoProxy           string        `mapstructure:"no_proxy" yaml:"no_proxy,omitempty"`
}

// ConcurrencyConfig bounds parallel batch analysis
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
	JSONDir  string `mapstructure:"json_dir" yaml:"json_dir"`
	Markdown bool   `mapstructure:"markdown" yaml:"markdown"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"` // empty = disabled
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Dictionary: DictionaryConfig{
			BaseLanguage: BaseLanguage,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "vigil.db",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
			Dir:     ".vigil-cache",
		},
		Speech: SpeechConfig{
			Provider:          "mock",
			Model:             "whisper-1",
			TranslationModel:  "gpt-4o-mini",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			JSONDir: "reports",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
