package main

import (
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
)

const testPassword = "testpassword123"

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to load configuration")
		}
		dsn = cfg.DSN()
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to hash password")
	}

	// Confirmed and unconfirmed accounts, plus an admin for the catalog
	// endpoints.
	testUsers := []struct {
		firstName string
		lastName  string
		email     string
		username  string
		confirmed bool
		role      string
	}{
		{"John", "Doe", "john.doe@example.com", "johndoe", true, models.RoleUser},
		{"Jane", "Smith", "jane.smith@example.com", "janesmith", true, models.RoleUser},
		{"Bob", "Wilson", "bob.wilson@example.com", "bobwilson", false, models.RoleUser},
		{"Admin", "User", "admin@example.com", "admin", true, models.RoleAdmin},
	}

	for _, u := range testUsers {
		var existing int64
		if err := db.Model(&models.User{}).Where("email = ?", u.email).Count(&existing).Error; err != nil {
			logging.Fatal().Err(err).Msg("failed to look up user")
		}
		if existing > 0 {
			logging.Info().Str("email", u.email).Msg("user already exists, skipping")
			continue
		}

		user := models.User{
			Email:        u.email,
			Username:     u.username,
			FirstName:    u.firstName,
			LastName:     u.lastName,
			PasswordHash: string(hashedPassword),
			Role:         u.role,
			IsConfirmed:  u.confirmed,
		}
		if err := db.Create(&user).Error; err != nil {
			logging.Error().Err(err).Str("email", u.email).Msg("failed to create user")
			continue
		}
		logging.Info().
			Str("email", u.email).
			Str("role", u.role).
			Bool("confirmed", u.confirmed).
			Msg("created test user")
	}

	var confirmed, unconfirmed int64
	db.Model(&models.User{}).Where("is_confirmed = ?", true).Count(&confirmed)
	db.Model(&models.User{}).Where("is_confirmed = ?", false).Count(&unconfirmed)
	logging.Info().
		Int64("confirmed", confirmed).
		Int64("unconfirmed", unconfirmed).
		Str("password", testPassword).
		Msg("test users ready")
}
