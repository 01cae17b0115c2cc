package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for vectraproj.
type Config struct {
	Projector ProjectorConfig `mapstructure:"projector"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
}

type ProjectorConfig struct {
	DefaultComponents int `mapstructure:"default_components"`
}

type ServerConfig struct {
	ListenAddr     string        `mapstructure:"listen_addr"`
	BodyLimitMB    int           `mapstructure:"body_limit_mb"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// MaxItems caps embeddings per HTTP request. Zero means no cap.
	MaxItems int `mapstructure:"max_items"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Enabled reports whether a Redis URL was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Options controls where configuration is loaded from.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load reads defaults, an optional config file and VECTRAPROJ_* environment
// variables, in increasing order of precedence.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else if cfg := os.Getenv("VECTRAPROJ_CONFIG_FILE"); cfg != "" {
		v.SetConfigFile(cfg)
		explicitFile = true
	}

	if !explicitFile {
		v.SetConfigName("vectraproj")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("VECTRAPROJ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("projector.default_components", 3)

	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.body_limit_mb", 64)
	v.SetDefault("server.request_timeout", "5m")
	v.SetDefault("server.max_items", 0)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.max_conn_idle_time", "5m")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.ttl", "24h")

	v.SetDefault("log.level", "info")
}

func (c *Config) Validate() error {
	if c.Projector.DefaultComponents != 2 && c.Projector.DefaultComponents != 3 {
		return fmt.Errorf("projector.default_components must be 2 or 3, got %d", c.Projector.DefaultComponents)
	}
	if c.Server.MaxItems < 0 {
		return fmt.Errorf("server.max_items must not be negative, got %d", c.Server.MaxItems)
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("server.body_limit_mb must be positive, got %d", c.Server.BodyLimitMB)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	return nil
}
