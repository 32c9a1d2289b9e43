package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"lcutils/internal/domain"
	"lcutils/internal/signer"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Auth        AuthConfig
	Storage     StorageConfig
	GCS         GCSConfig
	S3          S3Config
	Signing     SigningConfig
	EarthEngine EarthEngineConfig
	Log         LogConfig
	CORS        CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// AuthConfig holds bearer token settings for the HTTP API.
type AuthConfig struct {
	Secret      string        `mapstructure:"secret"`
	Issuer      string        `mapstructure:"issuer"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
}

// StorageConfig selects the object storage backend.
type StorageConfig struct {
	Provider        domain.StorageProvider `mapstructure:"provider"`
	DefaultBucket   string                 `mapstructure:"default_bucket"`
	MaxUploadSizeMB int64                  `mapstructure:"max_upload_size_mb"`
}

// GCSConfig holds Google Cloud Storage client settings.
type GCSConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Endpoint        string `mapstructure:"endpoint"`
}

// S3Config holds settings for S3-compatible stores.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// SigningConfig holds signed URL settings.
type SigningConfig struct {
	Mode           domain.SigningMode `mapstructure:"mode"`
	KeyFile        string             `mapstructure:"key_file"`
	ServiceAccount string             `mapstructure:"service_account"`
	DefaultExpiry  int64              `mapstructure:"default_expiry"`
}

// EarthEngineConfig holds asset catalog client settings.
type EarthEngineConfig struct {
	Project         string `mapstructure:"project"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Endpoint        string `mapstructure:"endpoint"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads an optional .env file, then configuration from environment
// variables with the LCUTILS_ prefix.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("LCUTILS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// Auth defaults
	v.SetDefault("auth.secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "lcutils")
	v.SetDefault("auth.token_expiry", "24h")

	// Storage defaults
	v.SetDefault("storage.provider", string(domain.StorageProviderGCS))
	v.SetDefault("storage.default_bucket", "")
	v.SetDefault("storage.max_upload_size_mb", 512)

	v.SetDefault("gcs.project_id", "")
	v.SetDefault("gcs.credentials_file", "")
	v.SetDefault("gcs.endpoint", "")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")

	// Signing defaults
	v.SetDefault("signing.mode", string(domain.SigningModeKeyFile))
	v.SetDefault("signing.key_file", "")
	v.SetDefault("signing.service_account", "")
	v.SetDefault("signing.default_expiry", signer.DefaultExpirationSeconds)

	v.SetDefault("earthengine.project", "")
	v.SetDefault("earthengine.credentials_file", "")
	v.SetDefault("earthengine.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "LCUTILS_SERVER_PORT",
		"server.read_timeout":          "LCUTILS_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "LCUTILS_SERVER_WRITE_TIMEOUT",
		"server.environment":           "LCUTILS_SERVER_ENVIRONMENT",
		"auth.secret":                  "LCUTILS_AUTH_SECRET",
		"auth.issuer":                  "LCUTILS_AUTH_ISSUER",
		"auth.token_expiry":            "LCUTILS_AUTH_TOKEN_EXPIRY",
		"storage.provider":             "LCUTILS_STORAGE_PROVIDER",
		"storage.default_bucket":       "LCUTILS_STORAGE_DEFAULT_BUCKET",
		"storage.max_upload_size_mb":   "LCUTILS_STORAGE_MAX_UPLOAD_SIZE_MB",
		"gcs.project_id":               "LCUTILS_GCS_PROJECT_ID",
		"gcs.credentials_file":         "LCUTILS_GCS_CREDENTIALS_FILE",
		"gcs.endpoint":                 "LCUTILS_GCS_ENDPOINT",
		"s3.region":                    "LCUTILS_S3_REGION",
		"s3.endpoint":                  "LCUTILS_S3_ENDPOINT",
		"s3.access_key":                "LCUTILS_S3_ACCESS_KEY",
		"s3.secret_key":                "LCUTILS_S3_SECRET_KEY",
		"signing.mode":                 "LCUTILS_SIGNING_MODE",
		"signing.key_file":             "LCUTILS_SIGNING_KEY_FILE",
		"signing.service_account":      "LCUTILS_SIGNING_SERVICE_ACCOUNT",
		"signing.default_expiry":       "LCUTILS_SIGNING_DEFAULT_EXPIRY",
		"earthengine.project":          "LCUTILS_EARTHENGINE_PROJECT",
		"earthengine.credentials_file": "LCUTILS_EARTHENGINE_CREDENTIALS_FILE",
		"earthengine.endpoint":         "LCUTILS_EARTHENGINE_ENDPOINT",
		"log.level":                    "LCUTILS_LOG_LEVEL",
		"log.format":                   "LCUTILS_LOG_FORMAT",
		"cors.allowed_origins":         "LCUTILS_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Cloud Run and friends set PORT. Use it if LCUTILS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LCUTILS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Auth = AuthConfig{
		Secret:      v.GetString("auth.secret"),
		Issuer:      v.GetString("auth.issuer"),
		TokenExpiry: v.GetDuration("auth.token_expiry"),
	}
	cfg.Storage = StorageConfig{
		Provider:        domain.StorageProvider(strings.ToLower(v.GetString("storage.provider"))),
		DefaultBucket:   v.GetString("storage.default_bucket"),
		MaxUploadSizeMB: v.GetInt64("storage.max_upload_size_mb"),
	}
	cfg.GCS = GCSConfig{
		ProjectID:       v.GetString("gcs.project_id"),
		CredentialsFile: v.GetString("gcs.credentials_file"),
		Endpoint:        v.GetString("gcs.endpoint"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Signing = SigningConfig{
		Mode:           domain.SigningMode(strings.ToLower(v.GetString("signing.mode"))),
		KeyFile:        v.GetString("signing.key_file"),
		ServiceAccount: v.GetString("signing.service_account"),
		DefaultExpiry:  v.GetInt64("signing.default_expiry"),
	}
	cfg.EarthEngine = EarthEngineConfig{
		Project:         v.GetString("earthengine.project"),
		CredentialsFile: v.GetString("earthengine.credentials_file"),
		Endpoint:        v.GetString("earthengine.endpoint"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that defaults cannot express.
func (c *Config) Validate() error {
	switch c.Storage.Provider {
	case domain.StorageProviderGCS, domain.StorageProviderS3:
	default:
		return fmt.Errorf("storage provider %q: %w", c.Storage.Provider, domain.ErrUnsupportedProvider)
	}
	switch c.Signing.Mode {
	case domain.SigningModeKeyFile, domain.SigningModeIAM:
	default:
		return fmt.Errorf("signing mode %q: %w", c.Signing.Mode, domain.ErrUnsupportedProvider)
	}
	if c.Signing.DefaultExpiry <= 0 || c.Signing.DefaultExpiry > signer.MaxExpirationSeconds {
		return fmt.Errorf("signing default expiry %d must be in (0, %d]", c.Signing.DefaultExpiry, signer.MaxExpirationSeconds)
	}
	return nil
}
