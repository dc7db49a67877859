package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a single pass.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	lines := make([]string, 0, len(v))
	for _, e := range v {
		lines = append(lines, e.Error())
	}
	return strings.Join(lines, "\n")
}

// ValidateConfig checks the configuration for the current environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.JWTSecret == "" {
		if cfg.Environment.IsProduction() {
			add("JWT_SECRET", "jwt_secret secret is required")
		} else {
			add("JWT_SECRET", "is required")
		}
	}
	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}
	if cfg.TokenTTL <= 0 {
		add("TOKEN_TTL", "must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		add("MAX_UPLOAD_BYTES", "must be positive")
	}
	if cfg.PopularRefresh <= 0 {
		add("POPULAR_REFRESH", "must be positive")
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for postgres")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "is required for postgres")
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	switch cfg.RevocationBackend {
	case BackendDatabase:
	case BackendRedis:
		if cfg.RedisURL == "" && cfg.RedisHost == "" {
			add("REDIS_URL", "REDIS_URL or REDIS_HOST is required for the redis revocation backend")
		}
	default:
		add("REVOCATION_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.RevocationBackend))
	}

	switch cfg.BlobBackend {
	case BackendDatabase:
	case BackendS3:
		if cfg.S3BucketName == "" {
			add("S3_BUCKET_NAME", "is required for the s3 blob backend")
		}
	default:
		add("BLOB_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.BlobBackend))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
