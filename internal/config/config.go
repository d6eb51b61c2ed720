package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

// Header constants.
const (
	HEADER_KEY_X_REQUEST_ID = "X-Request-Id"
)

const (
	ENV_KEY_APP_ENV   = "APP_ENV"
	ENV_KEY_PORT      = "PORT"
	ENV_KEY_LOG_LEVEL = "LOG_LEVEL"

	ENV_KEY_DATABASE_URL            = "DATABASE_URL"
	ENV_KEY_DB_HOST                 = "DB_HOST"
	ENV_KEY_DB_PORT                 = "DB_PORT"
	ENV_KEY_DB_USER                 = "DB_USER"
	ENV_KEY_DB_PASSWORD             = "DB_PASSWORD"
	ENV_KEY_DB_DATABASE             = "DB_DATABASE"
	ENV_KEY_DB_SSLMODE              = "DB_SSLMODE"
	ENV_KEY_DB_MAX_OPEN_CONNECTIONS = "DB_MAX_OPEN_CONNECTIONS"

	ENV_KEY_STORAGE_DRIVER     = "STORAGE_DRIVER"
	ENV_KEY_AWS_REGION         = "AWS_REGION"
	ENV_KEY_AWS_DEFAULT_REGION = "AWS_DEFAULT_REGION"
	ENV_KEY_S3_BUCKET          = "S3_BUCKET"
	ENV_KEY_S3_BUCKET_NAME     = "S3_BUCKET_NAME"
	ENV_KEY_S3_KEY_PREFIX      = "S3_KEY_PREFIX"
	ENV_KEY_S3_PUBLIC_BASE     = "S3_PUBLIC_BASE"
	ENV_KEY_UPLOAD_URL_TTL     = "UPLOAD_URL_TTL"
	ENV_KEY_DOWNLOAD_URL_TTL   = "DOWNLOAD_URL_TTL"
	ENV_KEY_MINIO_ENDPOINT     = "MINIO_ENDPOINT"
	ENV_KEY_MINIO_ACCESS_KEY   = "MINIO_ACCESS_KEY"
	ENV_KEY_MINIO_SECRET_KEY   = "MINIO_SECRET_KEY"
	ENV_KEY_MINIO_USE_SSL      = "MINIO_USE_SSL"
	ENV_KEY_PRESIGN_RATE_LIMIT = "PRESIGN_RATE_LIMIT"

	ENV_KEY_OTEL_EXPORTER_OTLP_ENDPOINT = "OTEL_EXPORTER_OTLP_ENDPOINT"
	ENV_KEY_OTEL_SERVICE_NAME           = "OTEL_SERVICE_NAME"
)

const (
	APP_ENV_LOCAL      = "local"
	APP_ENV_PRODUCTION = "production"

	STORAGE_DRIVER_S3    = "s3"
	STORAGE_DRIVER_MINIO = "minio"

	DEFAULT_UPLOAD_URL_TTL   = 15 * time.Minute
	DEFAULT_DOWNLOAD_URL_TTL = 5 * time.Minute

	// SigV4 presigned URLs cannot outlive seven days.
	MAX_PRESIGN_TTL = 7 * 24 * time.Hour
)

type ContextKey uint

const (
	_ ContextKey = iota
	CTX_KEY_REQUEST_ID
)

type Config struct {
	AppEnv   string
	Port     int `validate:"gte=0,lte=65535"`
	LogLevel string

	Database Database
	Storage  Storage

	// Requests per second allowed on the presign endpoints, per client IP.
	PresignRateLimit float64 `validate:"gte=0"`

	OTLPEndpoint string
	ServiceName  string
}

type Database struct {
	URL                string `validate:"required"`
	MaxOpenConnections int    `validate:"gte=0"`
}

type Storage struct {
	Driver     string `validate:"required,oneof=s3 minio"`
	Region     string `validate:"required"`
	Bucket     string `validate:"required"`
	KeyPrefix  string
	PublicBase string `validate:"omitempty,url"`

	UploadTTL   time.Duration `validate:"gt=0"`
	DownloadTTL time.Duration `validate:"gt=0"`

	MinIOEndpoint  string `validate:"required_if=Driver minio"`
	MinIOAccessKey string `validate:"required_if=Driver minio"`
	MinIOSecretKey string `validate:"required_if=Driver minio"`
	MinIOUseSSL    bool
}

func (c Config) IsProduction() bool {
	return c.AppEnv == APP_ENV_PRODUCTION
}

// Load reads the environment once and validates it. A missing bucket or
// region is a startup failure.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	env := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}

	var (
		cfg Config
		err error
	)

	cfg.AppEnv = env(ENV_KEY_APP_ENV)
	if cfg.AppEnv == "" {
		cfg.AppEnv = APP_ENV_LOCAL
	}
	cfg.LogLevel = strings.ToUpper(env(ENV_KEY_LOG_LEVEL))
	cfg.OTLPEndpoint = env(ENV_KEY_OTEL_EXPORTER_OTLP_ENDPOINT)
	cfg.ServiceName = env(ENV_KEY_OTEL_SERVICE_NAME)
	if cfg.ServiceName == "" {
		cfg.ServiceName = "assetcatalog"
	}

	if cfg.Port, err = intEnv(env(ENV_KEY_PORT), 8080); err != nil {
		return Config{}, fmt.Errorf("%s: %w", ENV_KEY_PORT, err)
	}
	if cfg.PresignRateLimit, err = floatEnv(env(ENV_KEY_PRESIGN_RATE_LIMIT), 10); err != nil {
		return Config{}, fmt.Errorf("%s: %w", ENV_KEY_PRESIGN_RATE_LIMIT, err)
	}

	cfg.Database.URL = env(ENV_KEY_DATABASE_URL)
	if cfg.Database.URL == "" && env(ENV_KEY_DB_HOST) != "" {
		sslmode := env(ENV_KEY_DB_SSLMODE)
		if sslmode == "" {
			sslmode = "disable"
		}
		cfg.Database.URL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			env(ENV_KEY_DB_USER),
			env(ENV_KEY_DB_PASSWORD),
			env(ENV_KEY_DB_HOST),
			env(ENV_KEY_DB_PORT),
			env(ENV_KEY_DB_DATABASE),
			sslmode,
		)
	}
	if cfg.Database.MaxOpenConnections, err = intEnv(env(ENV_KEY_DB_MAX_OPEN_CONNECTIONS), 0); err != nil {
		return Config{}, fmt.Errorf("%s: %w", ENV_KEY_DB_MAX_OPEN_CONNECTIONS, err)
	}

	cfg.Storage.Driver = strings.ToLower(env(ENV_KEY_STORAGE_DRIVER))
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = STORAGE_DRIVER_S3
	}
	cfg.Storage.Region = env(ENV_KEY_AWS_REGION, ENV_KEY_AWS_DEFAULT_REGION)
	cfg.Storage.Bucket = env(ENV_KEY_S3_BUCKET, ENV_KEY_S3_BUCKET_NAME)
	cfg.Storage.KeyPrefix = env(ENV_KEY_S3_KEY_PREFIX)
	cfg.Storage.PublicBase = env(ENV_KEY_S3_PUBLIC_BASE)
	cfg.Storage.MinIOEndpoint = env(ENV_KEY_MINIO_ENDPOINT)
	cfg.Storage.MinIOAccessKey = env(ENV_KEY_MINIO_ACCESS_KEY)
	cfg.Storage.MinIOSecretKey = env(ENV_KEY_MINIO_SECRET_KEY)
	if v := env(ENV_KEY_MINIO_USE_SSL); v != "" {
		if cfg.Storage.MinIOUseSSL, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", ENV_KEY_MINIO_USE_SSL, err)
		}
	} else {
		cfg.Storage.MinIOUseSSL = true
	}

	if cfg.Storage.UploadTTL, err = durationEnv(env(ENV_KEY_UPLOAD_URL_TTL), DEFAULT_UPLOAD_URL_TTL); err != nil {
		return Config{}, fmt.Errorf("%s: %w", ENV_KEY_UPLOAD_URL_TTL, err)
	}
	if cfg.Storage.DownloadTTL, err = durationEnv(env(ENV_KEY_DOWNLOAD_URL_TTL), DEFAULT_DOWNLOAD_URL_TTL); err != nil {
		return Config{}, fmt.Errorf("%s: %w", ENV_KEY_DOWNLOAD_URL_TTL, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Storage.UploadTTL > MAX_PRESIGN_TTL || cfg.Storage.DownloadTTL > MAX_PRESIGN_TTL {
		return Config{}, fmt.Errorf("invalid configuration: presign ttl must not exceed %s", MAX_PRESIGN_TTL)
	}

	return cfg, nil
}

func intEnv(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func floatEnv(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

// durationEnv accepts Go durations ("15m") or a bare number of seconds ("900").
func durationEnv(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
