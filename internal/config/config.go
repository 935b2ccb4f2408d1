package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Fatal pre-flight errors. Anything else found in config is degraded
// around at run time (a destination with missing credentials is simply
// disabled, never an error).
var (
	ErrNoDestination  = errors.New("no publish destination is configured")
	ErrMissingSource  = errors.New("keywords file is not configured")
	ErrBadConcurrency = errors.New("run.workers must be between 1 and 100")
)

type Config struct {
	Run          RunConfig          `mapstructure:"run"`
	Generation   GenerationConfig   `mapstructure:"generation"`
	Destinations DestinationsConfig `mapstructure:"destinations"`
	Sitemap      SitemapConfig      `mapstructure:"sitemap"`
	Indexing     IndexingConfig     `mapstructure:"indexing"`
	Checkpoint   CheckpointConfig   `mapstructure:"checkpoint"`
	Monitor      MonitorConfig      `mapstructure:"monitor"`
	Log          LogConfig          `mapstructure:"log"`
}

type RunConfig struct {
	KeywordsFile string `mapstructure:"keywords_file"`
	OutputDir    string `mapstructure:"output_dir"`
	Workers      int    `mapstructure:"workers"`
	SiteName     string `mapstructure:"site_name"`
	BaseURL      string `mapstructure:"base_url"`
	TemplateFile string `mapstructure:"template_file"`
}

type GenerationConfig struct {
	BaseURL   string      `mapstructure:"base_url"`
	Model     string      `mapstructure:"model"`
	APIKey    string      `mapstructure:"api_key"`
	TimeoutS  int         `mapstructure:"timeout_s"`
	MaxTokens int         `mapstructure:"max_tokens"`
	Batch     BatchConfig `mapstructure:"batch"`
}

type BatchConfig struct {
	Variations    int     `mapstructure:"variations"`
	MinFill       float64 `mapstructure:"min_fill"`
	MaxRetries    int     `mapstructure:"max_retries"`
	BackoffBaseMs int     `mapstructure:"backoff_base_ms"`
}

type DestinationsConfig struct {
	// Priority is the fixed fallback order; the first configured
	// destination in this list that succeeds provides the canonical URL.
	Priority []string    `mapstructure:"priority"`
	S3       S3Config    `mapstructure:"s3"`
	Bunny    BunnyConfig `mapstructure:"bunny"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	PublicURL string `mapstructure:"public_url"`
}

// Complete reports whether every required S3 field is present.
func (c S3Config) Complete() bool {
	return c.AccessKey != "" && c.SecretKey != "" && c.Bucket != "" && c.PublicURL != ""
}

type BunnyConfig struct {
	StorageZone string `mapstructure:"storage_zone"`
	AccessKey   string `mapstructure:"access_key"`
	RegionHost  string `mapstructure:"region_host"`
	PublicURL   string `mapstructure:"public_url"`
}

// Complete reports whether every required Bunny field is present.
func (c BunnyConfig) Complete() bool {
	return c.StorageZone != "" && c.AccessKey != "" && c.PublicURL != ""
}

type SitemapConfig struct {
	Path      string `mapstructure:"path"`
	RemoteKey string `mapstructure:"remote_key"`
}

type IndexingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"`
	DelayMs  int    `mapstructure:"delay_ms"`
}

type CheckpointConfig struct {
	Driver string `mapstructure:"driver"` // file, sqlite, postgres
	Path   string `mapstructure:"path"`   // file path or sqlite path
	DSN    string `mapstructure:"dsn"`    // postgres DSN
}

type MonitorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from a YAML file with environment overrides.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("run.output_dir", "./output")
	v.SetDefault("run.workers", 5)
	v.SetDefault("run.site_name", "Packaging Insights")
	v.SetDefault("run.base_url", "https://packaginginsights.b-cdn.net")
	v.SetDefault("generation.base_url", "https://api.openai.com/v1")
	v.SetDefault("generation.model", "gpt-4o-mini")
	v.SetDefault("generation.timeout_s", 120)
	v.SetDefault("generation.max_tokens", 2500)
	v.SetDefault("generation.batch.variations", 3)
	v.SetDefault("generation.batch.min_fill", 0.5)
	v.SetDefault("generation.batch.max_retries", 3)
	v.SetDefault("generation.batch.backoff_base_ms", 2000)
	v.SetDefault("destinations.priority", []string{"s3", "bunny"})
	v.SetDefault("destinations.s3.region", "us-east-1")
	v.SetDefault("destinations.s3.use_ssl", true)
	v.SetDefault("destinations.bunny.region_host", "storage.bunnycdn.com")
	v.SetDefault("sitemap.path", "./output/sitemap.xml")
	v.SetDefault("sitemap.remote_key", "sitemap.xml")
	v.SetDefault("indexing.enabled", false)
	v.SetDefault("indexing.delay_ms", 500)
	v.SetDefault("checkpoint.driver", "file")
	v.SetDefault("monitor.enabled", false)
	v.SetDefault("monitor.port", 8085)
	v.SetDefault("monitor.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("generation.api_key", "OPENAI_API_KEY")
	v.BindEnv("generation.base_url", "OPENAI_BASE_URL")
	v.BindEnv("generation.model", "OPENAI_MODEL")
	v.BindEnv("destinations.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("destinations.s3.access_key", "S3_ACCESS_KEY")
	v.BindEnv("destinations.s3.secret_key", "S3_SECRET_KEY")
	v.BindEnv("destinations.s3.bucket", "S3_BUCKET")
	v.BindEnv("destinations.s3.region", "S3_REGION")
	v.BindEnv("destinations.s3.public_url", "S3_PUBLIC_URL")
	v.BindEnv("destinations.bunny.storage_zone", "BUNNY_STORAGE_ZONE")
	v.BindEnv("destinations.bunny.access_key", "BUNNY_ACCESS_KEY")
	v.BindEnv("destinations.bunny.public_url", "BUNNY_PUBLIC_URL")
	v.BindEnv("indexing.token", "INDEXING_TOKEN")
	v.BindEnv("indexing.endpoint", "INDEXING_ENDPOINT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// EnabledDestinations returns the names of destinations whose
// credential set is complete, in priority order. A destination with
// any required field missing is silently disabled.
func (c *Config) EnabledDestinations() []string {
	var enabled []string
	for _, name := range c.Destinations.Priority {
		switch name {
		case "s3":
			if c.Destinations.S3.Complete() {
				enabled = append(enabled, name)
			}
		case "bunny":
			if c.Destinations.Bunny.Complete() {
				enabled = append(enabled, name)
			}
		}
	}
	return enabled
}

// Validate checks the pre-flight invariants that must abort the run
// before any item is processed. A dry run uploads nothing, so it skips
// the destination requirement.
func (c *Config) Validate(dryRun bool) error {
	if c.Run.KeywordsFile == "" {
		return ErrMissingSource
	}
	if c.Run.Workers < 1 || c.Run.Workers > 100 {
		return ErrBadConcurrency
	}
	if !dryRun && len(c.EnabledDestinations()) == 0 {
		return ErrNoDestination
	}
	return nil
}
