package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	BackendDatabase = "database"
	BackendRedis    = "redis"
	BackendS3       = "s3"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment `env:"-"`

	// Server configuration
	ServerHost  string   `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ServerPort  string   `env:"SERVER_PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`

	// Database configuration
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"recipehub"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"recipehub.db"`

	// Redis configuration
	RedisURL      string `env:"REDIS_URL"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Session tokens
	JWTSecret         string        `env:"JWT_SECRET"`
	JWTIssuer         string        `env:"JWT_ISSUER" envDefault:"recipehub"`
	TokenTTL          time.Duration `env:"TOKEN_TTL" envDefault:"2h"`
	RevocationBackend string        `env:"REVOCATION_BACKEND" envDefault:"database"`

	// Blob storage
	BlobBackend           string `env:"BLOB_BACKEND" envDefault:"database"`
	S3BucketName          string `env:"S3_BUCKET_NAME" envDefault:"recipehub-images"`
	AWSRegion             string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Endpoint            string `env:"S3_ENDPOINT"`
	DefaultProfilePicture string `env:"DEFAULT_PROFILE_PIC_ID" envDefault:"default-profile-picture"`
	MaxUploadBytes        int64  `env:"MAX_UPLOAD_BYTES" envDefault:"2097152"`

	PopularRefresh time.Duration `env:"POPULAR_REFRESH" envDefault:"4h"`
}

// LoadConfig reads .env (outside production), the process environment and,
// where allowed, Docker secret files, then validates the result.
func LoadConfig() (*Config, error) {
	environment := GetEnvironment()
	if !environment.IsProduction() {
		// a missing .env file is fine
		_ = godotenv.Load()
	}

	cfg := &Config{Environment: environment}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s configuration: %w", environment, err)
	}

	if environment.UsesSecretFiles() {
		applySecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad is LoadConfig for entrypoints that cannot continue without configuration.
func MustLoad() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

// PostgresDSN builds a lib/pq keyword/value connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// applySecrets overlays sensitive values with Docker secrets when the files exist.
func applySecrets(cfg *Config) {
	targets := map[string]*string{
		"jwt_secret":     &cfg.JWTSecret,
		"db_password":    &cfg.DBPassword,
		"redis_password": &cfg.RedisPassword,
	}
	for name, dst := range targets {
		if value := readSecret(name); value != "" {
			*dst = value
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
