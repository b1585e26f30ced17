package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer  HTTPServerConfig  `yaml:"http_server"`
	PropertyAPI PropertyAPIConfig `yaml:"property_api"`
	Cache       CacheConfig       `yaml:"cache"`
	Redis       RedisConfig       `yaml:"redis"`
	Memcached   MemcachedConfig   `yaml:"memcached"`
	NATS        NATSConfig        `yaml:"nats"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	SMTP        SMTPConfig        `yaml:"smtp"`
	Contact     ContactConfig     `yaml:"contact"`
	Logger      LoggerConfig      `yaml:"logger"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Tracing     TracingConfig     `yaml:"tracing"`
}

type HTTPServerConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	TimeoutGraceful time.Duration `yaml:"timeout_graceful_shutdown" env-default:"15s"`
}

type PropertyAPIConfig struct {
	BaseURL string        `yaml:"base_url" env:"PROPERTY_API_URL" env-default:"http://localhost:5000/api"`
	Timeout time.Duration `yaml:"timeout" env:"PROPERTY_API_TIMEOUT" env-default:"10s"`
}

// CacheConfig selects the shared cache tier. Backend is "redis",
// "memcached" or "none".
type CacheConfig struct {
	Backend      string        `yaml:"backend" env:"CACHE_BACKEND" env-default:"redis"`
	LocalMaxSize int64         `yaml:"local_max_size" env:"CACHE_LOCAL_MAX_SIZE" env-default:"1000"`
	LocalTTL     time.Duration `yaml:"local_ttl" env:"CACHE_LOCAL_TTL" env-default:"1m"`
	SearchTTL    time.Duration `yaml:"search_ttl" env:"CACHE_SEARCH_TTL" env-default:"5m"`
	PropertyTTL  time.Duration `yaml:"property_ttl" env:"CACHE_PROPERTY_TTL" env-default:"15m"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type MemcachedConfig struct {
	Addr string `yaml:"addr" env:"MEMCACHED_ADDR" env-default:"localhost:11211"`
}

// NATSConfig: an empty URL disables change events.
type NATSConfig struct {
	URL string `yaml:"url" env:"NATS_URL"`
}

// RabbitMQConfig: an empty URL disables the invalidation consumer.
type RabbitMQConfig struct {
	URL   string `yaml:"url" env:"RABBITMQ_URL"`
	Queue string `yaml:"queue" env:"RABBITMQ_QUEUE" env-default:"properties_queue"`
}

// SMTPConfig: an empty host disables mail delivery; contact messages are
// then only logged.
type SMTPConfig struct {
	Host         string        `yaml:"host" env:"SMTP_HOST"`
	Port         int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username     string        `yaml:"username" env:"SMTP_USERNAME"`
	Password     string        `yaml:"password" env:"SMTP_PASSWORD"`
	SenderEmail  string        `yaml:"sender_email" env:"SMTP_SENDER_EMAIL" env-default:"no-reply@localhost"`
	Encryption   string        `yaml:"encryption" env:"SMTP_ENCRYPTION" env-default:"tls"`
	ServerName   string        `yaml:"server_name" env:"SMTP_SERVER_NAME"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SMTP_WRITE_TIMEOUT" env-default:"10s"`
}

type ContactConfig struct {
	Inbox string `yaml:"inbox" env:"CONTACT_INBOX" env-default:"info@inmobiliaria.local"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
}

type MetricsConfig struct {
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"9091"`
}

type TracingConfig struct {
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"property-portal"`
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		if _, ok := err.(*os.PathError); ok {
			log.Printf("Warning: Config file not found at %s, attempting to load from environment variables only.", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH_PORTAL")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
