package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Togather-Foundation/mapgen/internal/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable: MAPGEN_MAPBOX_ACCESS_TOKEN -> mapbox.access_token.
const EnvPrefix = "MAPGEN"

// Preference store backends.
const (
	PrefsBackendMemory   = "memory"
	PrefsBackendFile     = "file"
	PrefsBackendPostgres = "postgres"
	PrefsBackendValkey   = "valkey"
)

type Config struct {
	Mapbox      MapboxConfig    `mapstructure:"mapbox"`
	Esri        EsriConfig      `mapstructure:"esri"`
	Geocoding   GeocodingConfig `mapstructure:"geocoding"`
	Prefs       PrefsConfig     `mapstructure:"prefs"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Tracing     TracingConfig   `mapstructure:"tracing"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	Environment string          `mapstructure:"environment"`
}

type MapboxConfig struct {
	AccessToken string `mapstructure:"access_token"`
	BaseURL     string `mapstructure:"base_url"`
	MinZoom     int    `mapstructure:"min_zoom"`
	MaxZoom     int    `mapstructure:"max_zoom"`
	DefaultZoom int    `mapstructure:"default_zoom"`
}

type EsriConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	DefaultScale string `mapstructure:"default_scale"`
}

type GeocodingConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Email        string        `mapstructure:"email"`
	CountryCodes string        `mapstructure:"country_codes"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type PrefsConfig struct {
	Backend     string `mapstructure:"backend"`
	Path        string `mapstructure:"path"`
	DatabaseURL string `mapstructure:"database_url"`
	ValkeyAddr  string `mapstructure:"valkey_addr"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"`
	ServiceName  string  `mapstructure:"service_name"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

type MetricsConfig struct {
	// Textfile is a node_exporter textfile collector path written after each run.
	Textfile string `mapstructure:"textfile"`
}

// Load reads configuration from defaults, the optional YAML file at path
// and MAPGEN_* environment variables, in increasing precedence.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mapbox.access_token", "")
	v.SetDefault("mapbox.base_url", "https://api.mapbox.com")
	v.SetDefault("mapbox.min_zoom", 0)
	v.SetDefault("mapbox.max_zoom", 20)
	v.SetDefault("mapbox.default_zoom", 15)

	v.SetDefault("esri.base_url", "https://services.arcgisonline.com/arcgis/rest/services")
	v.SetDefault("esri.default_scale", "10000 - Streets")

	v.SetDefault("geocoding.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoding.email", "")
	v.SetDefault("geocoding.country_codes", "")
	v.SetDefault("geocoding.rate_limit", 1.0)
	v.SetDefault("geocoding.timeout", 5*time.Second)
	v.SetDefault("geocoding.max_retries", 0)
	v.SetDefault("geocoding.cache_ttl", 30*24*time.Hour)

	v.SetDefault("prefs.backend", PrefsBackendFile)
	v.SetDefault("prefs.path", "")
	v.SetDefault("prefs.database_url", "")
	v.SetDefault("prefs.valkey_addr", "localhost:6379")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.service_name", "mapgen")
	v.SetDefault("tracing.otlp_endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_rate", 1.0)

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("environment", "development")
}

// Validate checks that the configuration is usable and reports every problem at once.
// The Mapbox access token is checked when the Mapbox provider is built, so
// Esri-only use works without one.
func (c Config) Validate() error {
	var errs []string

	if c.Mapbox.MinZoom < 0 || c.Mapbox.MaxZoom < c.Mapbox.MinZoom {
		errs = append(errs, fmt.Sprintf("mapbox zoom range [%d,%d] is invalid", c.Mapbox.MinZoom, c.Mapbox.MaxZoom))
	}
	if c.Mapbox.DefaultZoom < c.Mapbox.MinZoom || c.Mapbox.DefaultZoom > c.Mapbox.MaxZoom {
		errs = append(errs, fmt.Sprintf("mapbox.default_zoom %d is outside [%d,%d]", c.Mapbox.DefaultZoom, c.Mapbox.MinZoom, c.Mapbox.MaxZoom))
	}
	requireHTTPS := c.Environment == "production"
	for _, u := range []struct{ field, raw string }{
		{"mapbox.base_url", c.Mapbox.BaseURL},
		{"esri.base_url", c.Esri.BaseURL},
		{"geocoding.base_url", c.Geocoding.BaseURL},
	} {
		if err := validation.ValidateServiceURL(u.raw, u.field, requireHTTPS); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Geocoding.RateLimit <= 0 {
		errs = append(errs, "geocoding.rate_limit must be positive")
	}
	if c.Geocoding.Timeout <= 0 {
		errs = append(errs, "geocoding.timeout must be positive")
	}
	if c.Geocoding.MaxRetries < 0 {
		errs = append(errs, "geocoding.max_retries must not be negative")
	}

	switch c.Prefs.Backend {
	case PrefsBackendMemory, PrefsBackendFile:
	case PrefsBackendPostgres:
		if c.Prefs.DatabaseURL == "" {
			errs = append(errs, "prefs.database_url is required for the postgres backend")
		}
	case PrefsBackendValkey:
		if c.Prefs.ValkeyAddr == "" {
			errs = append(errs, "prefs.valkey_addr is required for the valkey backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("prefs.backend %q must be one of memory, file, postgres, valkey", c.Prefs.Backend))
	}

	if c.Tracing.Enabled && (c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1) {
		errs = append(errs, "tracing.sample_rate must be between 0.0 and 1.0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
