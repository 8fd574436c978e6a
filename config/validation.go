package config

import (
	"fmt"
	"strconv"
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

// requirements lists the settings that must be non-empty per environment
var requirements = map[Environment][]string{
	Development: {"JWT_SECRET"},
	Test:        {},
	CI:          {"DB_PASSWORD", "JWT_SECRET"},
	Production:  {"DB_PASSWORD", "JWT_SECRET", "PUBLIC_BASE_URL"},
}

// ValidateConfig checks if the configuration meets the requirements for
// its environment
func ValidateConfig(cfg *Config) error {
	var errs []string

	values := map[string]string{
		"DB_PASSWORD":     cfg.DBPassword,
		"JWT_SECRET":      cfg.JWTSecret,
		"PUBLIC_BASE_URL": cfg.PublicBaseURL,
	}
	for _, name := range requirements[cfg.Env] {
		if values[name] == "" {
			errs = append(errs, fmt.Sprintf("%s is required in %s environment (env var or %s secret)", name, cfg.Env, strings.ToLower(name)))
		}
	}

	switch cfg.StorageBackend {
	case "local":
		if cfg.MediaDir == "" {
			errs = append(errs, ValidationError{Field: "MEDIA_DIR", Message: "required for local storage"}.Error())
		}
	case "s3":
		if cfg.S3Bucket == "" {
			errs = append(errs, ValidationError{Field: "S3_BUCKET_NAME", Message: "required for s3 storage"}.Error())
		}
	default:
		errs = append(errs, ValidationError{Field: "STORAGE_BACKEND", Message: fmt.Sprintf("unknown backend %q", cfg.StorageBackend)}.Error())
	}

	if cfg.SMTPHost != "" {
		if _, err := strconv.Atoi(cfg.SMTPPort); err != nil {
			errs = append(errs, ValidationError{Field: "SMTP_PORT", Message: "must be numeric"}.Error())
		}
	}
	if cfg.JWTTTL <= 0 {
		errs = append(errs, ValidationError{Field: "JWT_TTL", Message: "must be positive"}.Error())
	}
	if cfg.RecipeCreateLimit <= 0 {
		errs = append(errs, ValidationError{Field: "RECIPE_CREATE_LIMIT", Message: "must be positive"}.Error())
	}
	if cfg.AuthRequestsPerMinute <= 0 {
		errs = append(errs, ValidationError{Field: "AUTH_REQUESTS_PER_MINUTE", Message: "must be positive"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
