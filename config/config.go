package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerHost    string
	ServerPort    string
	PublicBaseURL string

	// Database configuration
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	AutoMigrate   bool
	MigrationsDir string

	// Redis configuration. Redis is optional; an empty RedisURL and
	// RedisHost disables it.
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Media storage
	StorageBackend string
	MediaDir       string
	MediaURL       string
	S3Bucket       string
	S3Endpoint     string
	S3PublicURL    string
	S3PublicRead   bool
	AWSRegion      string

	// Outgoing mail
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string

	LogLevel  string
	LogFormat string

	CORSOrigins   []string
	DefaultLocale string

	// TrustedProxies may set the client IP through X-Forwarded-For.
	// Empty means the peer address is always the client.
	TrustedProxies []string

	RecipeCreateLimit     int
	AuthRequestsPerMinute int
}

// LoadConfig creates a new Config instance with values from environment
// variables, falling back to Docker secrets and then to defaults.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Env: env}

	if err := load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(cfg *Config) error {
	var err error

	cfg.ServerHost = lookup("SERVER_HOST", "0.0.0.0")
	cfg.ServerPort = lookup("SERVER_PORT", "8080")
	cfg.PublicBaseURL = strings.TrimRight(lookup("PUBLIC_BASE_URL", ""), "/")

	cfg.DBHost = lookup("DB_HOST", "localhost")
	cfg.DBPort = lookup("DB_PORT", "5432")
	cfg.DBUser = lookup("DB_USER", "postgres")
	cfg.DBPassword = lookup("DB_PASSWORD", "")
	cfg.DBName = lookup("DB_NAME", "foodgram")
	cfg.DBSSLMode = lookup("DB_SSL_MODE", "disable")
	cfg.MigrationsDir = lookup("MIGRATIONS_DIR", "migrations")
	if cfg.AutoMigrate, err = lookupBool("AUTO_MIGRATE", true); err != nil {
		return err
	}

	cfg.RedisURL = lookup("REDIS_URL", "")
	cfg.RedisHost = lookup("REDIS_HOST", "")
	cfg.RedisPort = lookup("REDIS_PORT", "6379")
	cfg.RedisPassword = lookup("REDIS_PASSWORD", "")
	if cfg.RedisDB, err = lookupInt("REDIS_DB", 0); err != nil {
		return err
	}

	defaultSecret := ""
	if cfg.Env == Test {
		defaultSecret = "test-secret"
	}
	cfg.JWTSecret = lookup("JWT_SECRET", defaultSecret)
	if cfg.JWTTTL, err = lookupDuration("JWT_TTL", 24*time.Hour); err != nil {
		return err
	}

	cfg.StorageBackend = strings.ToLower(lookup("STORAGE_BACKEND", "local"))
	cfg.MediaDir = lookup("MEDIA_DIR", "media")
	cfg.MediaURL = "/" + strings.Trim(lookup("MEDIA_URL", "/media/"), "/")
	cfg.S3Bucket = lookup("S3_BUCKET_NAME", "")
	cfg.S3Endpoint = lookup("S3_ENDPOINT", "")
	cfg.S3PublicURL = strings.TrimRight(lookup("S3_PUBLIC_URL", ""), "/")
	if cfg.S3PublicRead, err = lookupBool("S3_PUBLIC_READ", false); err != nil {
		return err
	}
	cfg.AWSRegion = lookup("AWS_REGION", "us-east-1")

	cfg.SMTPHost = lookup("SMTP_HOST", "")
	cfg.SMTPPort = lookup("SMTP_PORT", "587")
	cfg.SMTPUsername = lookup("SMTP_USERNAME", "")
	cfg.SMTPPassword = lookup("SMTP_PASSWORD", "")
	cfg.EmailFrom = lookup("EMAIL_FROM", "noreply@foodgram.local")

	logFormat := "json"
	if cfg.Env == Development {
		logFormat = "console"
	}
	cfg.LogLevel = lookup("LOG_LEVEL", "info")
	cfg.LogFormat = lookup("LOG_FORMAT", logFormat)

	cfg.CORSOrigins = splitList(lookup("CORS_ORIGINS", "http://localhost:3000"))
	cfg.DefaultLocale = lookup("DEFAULT_LOCALE", "ru")
	cfg.TrustedProxies = splitList(lookup("TRUSTED_PROXIES", ""))

	if cfg.RecipeCreateLimit, err = lookupInt("RECIPE_CREATE_LIMIT", 30); err != nil {
		return err
	}
	if cfg.AuthRequestsPerMinute, err = lookupInt("AUTH_REQUESTS_PER_MINUTE", 20); err != nil {
		return err
	}

	return nil
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether a Redis server was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// ListenAddr returns host:port for the HTTP server
func (c *Config) ListenAddr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// lookup reads an environment variable, then the Docker secret of the same
// name in lower case, then returns def.
func lookup(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return strings.TrimSpace(v)
	}
	if v := readSecret(strings.ToLower(name)); v != "" {
		return v
	}
	return def
}

func lookupInt(name string, def int) (int, error) {
	raw := lookup(name, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ValidationError{Field: name, Message: fmt.Sprintf("not an integer: %q", raw)}
	}
	return v, nil
}

func lookupBool(name string, def bool) (bool, error) {
	raw := lookup(name, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, ValidationError{Field: name, Message: fmt.Sprintf("not a boolean: %q", raw)}
	}
	return v, nil
}

func lookupDuration(name string, def time.Duration) (time.Duration, error) {
	raw := lookup(name, "")
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, ValidationError{Field: name, Message: fmt.Sprintf("not a duration: %q", raw)}
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
