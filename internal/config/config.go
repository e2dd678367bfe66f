package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Event drivers accepted by EVENTS_DRIVER.
const (
	EventsNone   = "none"
	EventsRabbit = "rabbit"
	EventsNATS   = "nats"
)

// DatabaseConfig holds PostgreSQL database connection settings.
// URL, when set, takes precedence over the individual components.
type DatabaseConfig struct {
	URL                string `env:"DATABASE_URL"`
	Host               string `env:"DB_HOST"`
	Port               string `env:"DB_PORT" envDefault:"5432"`
	User               string `env:"DB_USER"`
	Password           string `env:"DB_PASSWORD"`
	Name               string `env:"DB_NAME"`
	SSLMode            string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSec int    `env:"DB_CONN_MAX_LIFETIME_SEC" envDefault:"300"`
}

// MongoConfig holds MongoDB settings.
type MongoConfig struct {
	URI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGODB_DATABASE" envDefault:"online-shop"`
}

// RedisConfig enables the product cache when Addr is set.
type RedisConfig struct {
	Addr string        `env:"REDIS_ADDR"`
	TTL  time.Duration `env:"REDIS_TTL" envDefault:"10m"`
}

// EventsConfig selects where order events are published.
type EventsConfig struct {
	Driver         string `env:"EVENTS_DRIVER" envDefault:"none"`
	RabbitURL      string `env:"RABBIT_URL"`
	RabbitExchange string `env:"RABBIT_EXCHANGE" envDefault:"shop.events"`
	NATSURL        string `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`
}

// MinIOConfig holds object storage settings for order receipts.
type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" envDefault:"receipts"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"shopapi"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	Port            string        `env:"PORT" envDefault:"3000"`
	StoreDriver     string        `env:"STORE_DRIVER" envDefault:"memory"`
	CatalogFile     string        `env:"CATALOG_FILE"`
	StaticDir       string        `env:"STATIC_DIR"`
	SwaggerHost     string        `env:"SWAGGER_HOST"`
	SwaggerSchemes  []string      `env:"SWAGGER_SCHEMES" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Events   EventsConfig
	MinIO    MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
