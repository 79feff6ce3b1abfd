package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/itakarlapalli/subcentre/internal/storage"
)

// Store backends accepted in STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Mail relays accepted in MAIL_RELAY.
const (
	RelaySMTP  = "smtp"
	RelayRedis = "redis"
	RelayNone  = "none"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Mail      MailConfig
	MinIO     storage.MinIOConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	CORSOrigin   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StoreConfig struct {
	Backend  string
	DataFile string
	BoltPath string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type PostgresConfig struct {
	URL     string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr is host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type MailConfig struct {
	Relay    string
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Operator string
	QueueKey string
}

// ClientConfig is what the command-line client needs.
type ClientConfig struct {
	APIURL  string
	Timeout time.Duration
	MinIO   storage.MinIOConfig
}

func newViper() *viper.Viper {
	_ = godotenv.Load()
	v := viper.New()
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from environment variables and an optional
// .env file in the working directory.
func LoadConfig() (*Config, error) {
	v := newViper()

	v.SetDefault("SERVER_PORT", "3001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("STORE_BACKEND", BackendFile)
	v.SetDefault("DATA_FILE", "data/patients.json")
	v.SetDefault("BOLT_PATH", "data/patients.db")
	v.SetDefault("MONGODB_DATABASE", "subcentre")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("POSTGRES_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("MAIL_RELAY", RelaySMTP)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_QUEUE_KEY", "contact:messages")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			CORSOrigin:   v.GetString("CORS_ALLOW_ORIGIN"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
			DataFile: v.GetString("DATA_FILE"),
			BoltPath: v.GetString("BOLT_PATH"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Postgres: PostgresConfig{
			URL:     v.GetString("DATABASE_URL"),
			Timeout: time.Duration(v.GetInt("POSTGRES_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Mail: MailConfig{
			Relay:    strings.ToLower(strings.TrimSpace(v.GetString("MAIL_RELAY"))),
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
			Operator: v.GetString("MAIL_OPERATOR_ADDRESS"),
			QueueKey: v.GetString("MAIL_QUEUE_KEY"),
		},
		MinIO: minioConfig(v),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendMemory, BackendBolt:
	case BackendMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("STORE_BACKEND=mongo requires MONGODB_URI")
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	switch c.Mail.Relay {
	case RelaySMTP, RelayNone:
	case RelayRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("MAIL_RELAY=redis requires REDIS_HOST")
		}
	default:
		return fmt.Errorf("unknown MAIL_RELAY %q", c.Mail.Relay)
	}
	return nil
}

// LoadClientConfig reads PATIENTS_API_URL and PATIENTS_API_TIMEOUT (seconds,
// 0 = transport default).
func LoadClientConfig() ClientConfig {
	v := newViper()
	v.SetDefault("PATIENTS_API_URL", "http://localhost:3001")
	v.SetDefault("PATIENTS_API_TIMEOUT", 0)
	return ClientConfig{
		APIURL:  strings.TrimRight(v.GetString("PATIENTS_API_URL"), "/"),
		Timeout: time.Duration(v.GetInt("PATIENTS_API_TIMEOUT")) * time.Second,
		MinIO:   minioConfig(v),
	}
}

func minioConfig(v *viper.Viper) storage.MinIOConfig {
	v.SetDefault("MINIO_BUCKET", "subcentre-exports")
	return storage.MinIOConfig{
		Endpoint:  v.GetString("MINIO_ENDPOINT"),
		AccessKey: v.GetString("MINIO_ACCESS_KEY"),
		SecretKey: v.GetString("MINIO_SECRET_KEY"),
		UseSSL:    v.GetBool("MINIO_USE_SSL"),
		Bucket:    v.GetString("MINIO_BUCKET"),
	}
}
