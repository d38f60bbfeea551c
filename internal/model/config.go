package model

import "time"

// Config holds the complete application configuration.
// Populated from defaults, then the config file, then CLIMATEVIEW_*
// environment variables, then CLI flags.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	API         APIConfig         `yaml:"api" mapstructure:"api"`
	Catalog     CatalogConfig     `yaml:"catalog" mapstructure:"catalog"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// HTTPConfig configures outbound fetches to the API and catalog
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	RatePerSecond float64       `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst     int           `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// CacheConfig configures read-through memoization of upstream data
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend   string        `yaml:"backend" mapstructure:"backend"` // "memory", "disk", or "sqlite"
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	Path      string        `yaml:"path" mapstructure:"path"` // sqlite database path
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// APIConfig configures the OpenClimate pledge API client
type APIConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CatalogConfig configures the remote tabular catalog and names the
// datasets the app reads from it. Subnational sources are a mapping
// from national actor code to dataset name, so adding a country is a
// config change rather than a code change.
type CatalogConfig struct {
	MasterURL   string            `yaml:"master_url" mapstructure:"master_url"`
	National    string            `yaml:"national" mapstructure:"national"`
	Countries   string            `yaml:"countries" mapstructure:"countries"`
	Subnational string            `yaml:"subnational" mapstructure:"subnational"`
	Sources     map[string]string `yaml:"sources" mapstructure:"sources"`
}

// ServerConfig configures the dashboard HTTP server
type ServerConfig struct {
	Port int    `yaml:"port" mapstructure:"port"`
	Env  string `yaml:"env" mapstructure:"env"`
}

// OutputConfig configures CLI output
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Format  string `yaml:"format" mapstructure:"format"` // chart format: "png" or "svg"
}

// LLMConfig configures the optional reconciliation summarizer.
// Disabled unless a provider is set; never affects computed series.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty" mapstructure:"provider"`
	Model    string `yaml:"model,omitempty" mapstructure:"model"`
	APIKey   string `yaml:"-" mapstructure:"-"`
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// ConcurrencyConfig bounds the dataset prefetch pool
type ConcurrencyConfig struct {
	PrefetchWorkers int `yaml:"prefetch_workers" mapstructure:"prefetch_workers"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "climateview/0.3 (+https://github.com/openclimate-tools/climateview)",
			MaxBodyBytes:  20_000_000,
			RatePerSecond: 4,
			RateBurst:     4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Backend:   "disk",
			Dir:       "",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		API: APIConfig{
			BaseURL: "https://openclimate.network",
		},
		Catalog: CatalogConfig{
			MasterURL:   "https://raw.githubusercontent.com/Open-Earth-Foundation/intake-OpenClimate/main/master.yaml",
			National:    "unfccc",
			Countries:   "country",
			Subnational: "subnational",
			Sources: map[string]string{
				"CA": "eccc_inventory",
				"US": "epa_inventory",
			},
		},
		Server: ServerConfig{
			Port: 4000,
			Env:  "development",
		},
		Output: OutputConfig{
			Format: "png",
		},
		Concurrency: ConcurrencyConfig{
			PrefetchWorkers: 4,
		},
	}
}
