package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Mock      MockConfig      `koanf:"mock"`
	Redis     RedisConfig     `koanf:"redis"`
	Database  DatabaseConfig  `koanf:"database"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// MockConfig - параметры генераторов. Seed=0 -> случайный при каждом старте.
type MockConfig struct {
	Seed           uint64        `koanf:"seed"`
	MessagesCount  int           `koanf:"messages_count" validate:"min=1,max=100000"`
	Timezone       string        `koanf:"timezone" validate:"required"`
	StatsLatency   time.Duration `koanf:"stats_latency" validate:"min=0"`
	ListLatency    time.Duration `koanf:"list_latency" validate:"min=0"`
	DetailsLatency time.Duration `koanf:"details_latency" validate:"min=0"`
}

// RedisConfig: пустой addr выключает кэш ответов.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db" validate:"min=0"`
	TTL      time.Duration `koanf:"ttl" validate:"gt=0"`
	// период опроса used_memory
	SizeInterval time.Duration `koanf:"size_interval" validate:"gt=0"`
}

// DatabaseConfig: пустой dsn -> сообщения берутся из мок-хранилища.
type DatabaseConfig struct {
	DSN             string        `koanf:"dsn"`
	MetricsInterval time.Duration `koanf:"metrics_interval" validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins" validate:"dive,required"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests" validate:"min=1"`
	Window   time.Duration `koanf:"window" validate:"gt=0"`
	Disabled bool          `koanf:"disabled"`
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Mock: MockConfig{
			MessagesCount:  100,
			Timezone:       "Europe/Warsaw",
			StatsLatency:   300 * time.Millisecond,
			ListLatency:    200 * time.Millisecond,
			DetailsLatency: 150 * time.Millisecond,
		},
		Redis: RedisConfig{
			TTL:          30 * time.Second,
			SizeInterval: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MetricsInterval: 10 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},
	}
}

// Load: дефолты -> yaml (CONFIG_PATH или config.yaml) -> переменные окружения.
// .env подхватывается до чтения окружения, уже выставленные переменные не перетираются.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Mock.Timezone); err != nil {
		return fmt.Errorf("mock.timezone: %w", err)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{"cors.allowed_origins"}

// из env списки приходят строкой через запятую
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return err
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",

	"mock_seed":            "mock.seed",
	"mock_messages_count":  "mock.messages_count",
	"mock_timezone":        "mock.timezone",
	"mock_stats_latency":   "mock.stats_latency",
	"mock_list_latency":    "mock.list_latency",
	"mock_details_latency": "mock.details_latency",

	"redis_addr":          "redis.addr",
	"redis_password":      "redis.password",
	"redis_db":            "redis.db",
	"redis_ttl":           "redis.ttl",
	"redis_size_interval": "redis.size_interval",

	"db_dsn":              "database.dsn",
	"db_metrics_interval": "database.metrics_interval",

	"cors_origins": "cors.allowed_origins",

	"rate_limit_requests": "rate_limit.requests",
	"rate_limit_window":   "rate_limit.window",
	"disable_rate_limit":  "rate_limit.disabled",
}

// Неизвестные переменные окружения пропускаются.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
