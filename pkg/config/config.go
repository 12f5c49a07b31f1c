package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "REVENUECAST"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Model   ModelConfig   `mapstructure:"model"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Export  ExportConfig  `mapstructure:"export"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ModelConfig struct {
	NoiseAmplitude float64 `mapstructure:"noise_amplitude"`
	MaxBatchSize   int     `mapstructure:"max_batch_size"`
}

type StorageConfig struct {
	Driver           string `mapstructure:"driver"`
	DuckDBPath       string `mapstructure:"duckdb_path"`
	PostgresDSN      string `mapstructure:"postgres_dsn"`
	PostgresMaxConns int32  `mapstructure:"postgres_max_conns"`
}

type AuthConfig struct {
	Secret          string        `mapstructure:"secret"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	CookieSecure    bool          `mapstructure:"cookie_secure"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	SignInRate      float64       `mapstructure:"signin_rate"`
	SignInBurst     int           `mapstructure:"signin_burst"`
}

type ExportConfig struct {
	Bucket     string `mapstructure:"bucket"`
	Prefix     string `mapstructure:"prefix"`
	AWSProfile string `mapstructure:"aws_profile"`
	AWSRegion  string `mapstructure:"aws_region"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("model.noise_amplitude", 2500.0)
	v.SetDefault("model.max_batch_size", 100)

	v.SetDefault("storage.driver", "duckdb")
	v.SetDefault("storage.duckdb_path", "revenuecast.db")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.postgres_max_conns", 10)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.credentials_file", "")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.redis_addr", "")
	v.SetDefault("auth.redis_password", "")
	v.SetDefault("auth.redis_db", 0)
	v.SetDefault("auth.signin_rate", 1.0)
	v.SetDefault("auth.signin_burst", 5)

	v.SetDefault("export.bucket", "")
	v.SetDefault("export.prefix", "history")
	v.SetDefault("export.aws_profile", "")
	v.SetDefault("export.aws_region", "")
}

// LoadConfig reads defaults, then the optional file at path, then
// REVENUECAST_* environment variables (server.port -> REVENUECAST_SERVER_PORT).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings the web server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case "duckdb":
		if c.Storage.DuckDBPath == "" {
			errs = append(errs, errors.New("storage.duckdb_path is required"))
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}

	if len(c.Auth.Secret) < 16 {
		errs = append(errs, errors.New("auth.secret must be at least 16 characters"))
	}
	if c.Model.MaxBatchSize < 1 {
		errs = append(errs, errors.New("model.max_batch_size must be positive"))
	}
	if c.Model.NoiseAmplitude < 0 {
		errs = append(errs, errors.New("model.noise_amplitude must not be negative"))
	}
	if c.Auth.SignInRate <= 0 {
		errs = append(errs, errors.New("auth.signin_rate must be positive"))
	}
	if c.Auth.SignInBurst < 1 {
		errs = append(errs, errors.New("auth.signin_burst must be at least 1"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}

	return errors.Join(errs...)
}
