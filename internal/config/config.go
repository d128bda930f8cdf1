// Package config loads service settings from configs/config.yml, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"puzzled_pint_map/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PINTMAP_HTTP_PORT.
const EnvPrefix = "PINTMAP"

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Map      MapConfig      `mapstructure:"map"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Importer ImporterConfig `mapstructure:"importer"`
	Events   []models.Event `mapstructure:"events"`
}

type HTTPConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey  string        `mapstructure:"signing_key"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	AllowSignUp bool          `mapstructure:"allow_sign_up"`
}

type StorageConfig struct {
	Driver  string   `mapstructure:"driver"` // file | s3 | http
	Dir     string   `mapstructure:"dir"`
	BaseURL string   `mapstructure:"base_url"`
	S3      S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type MapConfig struct {
	CitiesOverlay   bool          `mapstructure:"cities_overlay"`
	CitiesLabel     string        `mapstructure:"cities_label"`
	AllowPartial    bool          `mapstructure:"allow_partial"`
	MaxParallel     int           `mapstructure:"max_parallel"`
	BuildTimeout    time.Duration `mapstructure:"build_timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"` // 0 disables periodic rebuilds
}

type GeocoderConfig struct {
	Provider  string        `mapstructure:"provider"` // google | nominatim
	APIKey    string        `mapstructure:"api_key"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ImporterConfig struct {
	LocationsURL  string        `mapstructure:"locations_url"`
	IncludeRemote bool          `mapstructure:"include_remote"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// SetDefaults registers a default for every key so that a missing config
// file still yields a runnable service.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_header_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("db.path", "app.db")

	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.allow_sign_up", false)

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.s3.region", "")

	v.SetDefault("map.cities_overlay", true)
	v.SetDefault("map.cities_label", "Cities")
	v.SetDefault("map.allow_partial", false)
	v.SetDefault("map.max_parallel", 0)
	v.SetDefault("map.build_timeout", 30*time.Second)
	v.SetDefault("map.refresh_interval", time.Duration(0))

	v.SetDefault("geocoder.provider", "google")
	v.SetDefault("geocoder.user_agent", "puzzled-pint-map")
	v.SetDefault("geocoder.timeout", 8*time.Second)

	v.SetDefault("importer.locations_url", "https://puzzledpint.com/legacy-pp-locations.php?id=%d")
	v.SetDefault("importer.include_remote", true)
	v.SetDefault("importer.timeout", 15*time.Second)
}

// New returns a viper instance with defaults, env overrides and the search
// path for config.yml. configFile, when set, replaces the search path.
func New(configFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// keys without a default are invisible to AutomaticEnv during Unmarshal
	_ = v.BindEnv("geocoder.api_key", EnvPrefix+"_GEOCODER_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("auth.signing_key")
	_ = v.BindEnv("storage.base_url")
	_ = v.BindEnv("storage.s3.endpoint")
	_ = v.BindEnv("storage.s3.access_key")
	_ = v.BindEnv("storage.s3.secret_key")
	_ = v.BindEnv("storage.s3.bucket")
	_ = v.BindEnv("storage.s3.use_ssl")
	return v
}

// Load reads .env (when present) and the config file, then decodes and
// validates the result. A missing config.yml is not an error.
func Load(v *viper.Viper) (*Config, error) {
	_ = godotenv.Load()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var (
	ErrDuplicateEvent = errors.New("duplicate event id")
	ErrStorageDriver  = errors.New("unknown storage driver")
)

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	seen := make(map[int]struct{}, len(c.Events))
	for i, e := range c.Events {
		if e.ID <= 0 {
			return fmt.Errorf("events[%d]: id must be positive", i)
		}
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("events[%d]: name is required", i)
		}
		if _, ok := seen[e.ID]; ok {
			return fmt.Errorf("events[%d]: %w %d", i, ErrDuplicateEvent, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	switch c.Storage.Driver {
	case "file":
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for the file driver")
		}
	case "s3":
		if c.Storage.S3.Endpoint == "" || c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.endpoint and storage.s3.bucket are required for the s3 driver")
		}
	case "http":
		if c.Storage.BaseURL == "" {
			return errors.New("storage.base_url is required for the http driver")
		}
	default:
		return fmt.Errorf("%w %q", ErrStorageDriver, c.Storage.Driver)
	}

	if c.Map.RefreshInterval < 0 {
		return errors.New("map.refresh_interval must not be negative")
	}
	if c.Map.MaxParallel < 0 {
		return errors.New("map.max_parallel must not be negative")
	}
	return nil
}
