package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const codeAlphabet = "0123456789"

type AuthService struct {
	db         *gorm.DB
	jwtSecret  []byte
	tokenTTL   time.Duration
	denylist   TokenDenylist
	notifier   ConfirmationNotifier
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration, denylist TokenDenylist, notifier ConfirmationNotifier) *AuthService {
	return &AuthService{
		db:         db,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		denylist:   denylist,
		notifier:   notifier,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// SetBcryptCost lowers hashing cost in tests.
func (s *AuthService) SetBcryptCost(cost int) {
	s.bcryptCost = cost
}

// Signup registers an unconfirmed user and mails a confirmation code.
// Signing up again with the same email and username while still
// unconfirmed refreshes the profile and sends a new code; created is false
// in that case.
func (s *AuthService) Signup(ctx context.Context, req types.SignupRequest) (user *models.User, created bool, err error) {
	req.Email = normalizeEmail(req.Email)

	v := &ValidationError{}
	if key := UsernameProblem(req.Username); key != "" {
		v.Add("username", key)
	}
	validatePassword(v, "password", req.Password)
	if err := v.OrNil(); err != nil {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}
	code, err := generateCode(models.ConfirmationCodeLength)
	if err != nil {
		return nil, false, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byEmail, err := findUser(tx, "email = ?", req.Email)
		if err != nil {
			return err
		}
		byUsername, err := findUser(tx, "username = ?", req.Username)
		if err != nil {
			return err
		}

		v := &ValidationError{}
		if byEmail != nil && (byEmail.Username != req.Username || byEmail.IsConfirmed) {
			v.Add("email", i18n.EmailTaken)
		}
		if byUsername != nil && (byUsername.Email != req.Email || byUsername.IsConfirmed) {
			v.Add("username", i18n.UsernameTaken)
		}
		if err := v.OrNil(); err != nil {
			return err
		}

		if byEmail != nil {
			user = byEmail
			user.FirstName = req.FirstName
			user.LastName = req.LastName
			user.PasswordHash = string(hash)
			user.ConfirmationCode = &code
			user.FailedCodeTries = 0
			return tx.Save(user).Error
		}

		user = &models.User{
			Email:            req.Email,
			Username:         req.Username,
			FirstName:        req.FirstName,
			LastName:         req.LastName,
			PasswordHash:     string(hash),
			Role:             models.RoleUser,
			ConfirmationCode: &code,
		}
		created = true
		return tx.Create(user).Error
	})
	if err != nil {
		if KindOf(err) != 0 {
			return nil, false, err
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, Field("username", i18n.UsernameTaken)
		}
		return nil, false, fmt.Errorf("failed to register user: %w", err)
	}

	if err := s.notifier.SendConfirmationCode(ctx, user, code); err != nil {
		return nil, false, fmt.Errorf("failed to send confirmation code: %w", err)
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Bool("created", created).Msg("confirmation code issued")
	return user, created, nil
}

// ObtainToken exchanges a confirmation code for an access token and marks
// the account confirmed. The code is single use.
func (s *AuthService) ObtainToken(ctx context.Context, username, code string) (string, error) {
	user, err := findUser(s.db.WithContext(ctx), "username = ?", username)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if user.ConfirmationCode == nil {
		return "", ErrInvalidCode
	}
	if subtle.ConstantTimeCompare([]byte(*user.ConfirmationCode), []byte(code)) != 1 {
		if err := s.recordFailedCode(ctx, user.ID); err != nil {
			return "", err
		}
		return "", ErrInvalidCode
	}

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"is_confirmed":      true,
		"confirmation_code": nil,
		"failed_code_tries": 0,
	}).Error
	if err != nil {
		return "", fmt.Errorf("failed to confirm user: %w", err)
	}
	user.IsConfirmed = true
	user.ConfirmationCode = nil

	return s.GenerateToken(user)
}

// recordFailedCode counts a wrong confirmation code. The code is burned
// once MaxConfirmationTries is reached and a new sign-up must reissue it.
func (s *AuthService) recordFailedCode(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"failed_code_tries": gorm.Expr("failed_code_tries + 1"),
		"confirmation_code": gorm.Expr("CASE WHEN failed_code_tries + 1 >= ? THEN NULL ELSE confirmation_code END", models.MaxConfirmationTries),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to record confirmation attempt: %w", err)
	}
	return nil
}

// Login authenticates a confirmed user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := findUser(s.db.WithContext(ctx), "email = ?", normalizeEmail(email))
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if !user.IsConfirmed {
		return "", ErrEmailNotConfirmed
	}
	return s.GenerateToken(user)
}

// Logout revokes the token described by claims until it would expire.
func (s *AuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	if claims.ExpiresAt == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// SetPassword replaces the password after checking the current one.
func (s *AuthService) SetPassword(ctx context.Context, userID uint, current, next string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return Field("current_password", i18n.PasswordWrong)
	}

	v := &ValidationError{}
	validatePassword(v, "new_password", next)
	if err := v.OrNil(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GenerateToken signs an HS256 access token for user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a token and rejects revoked ones.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func findUser(db *gorm.DB, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := db.Where(query, args...).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func generateCode(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate confirmation code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
