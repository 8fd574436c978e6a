package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type sentCode struct {
	email string
	code  string
}

type recordingNotifier struct {
	sent []sentCode
}

func (n *recordingNotifier) SendConfirmationCode(ctx context.Context, user *models.User, code string) error {
	n.sent = append(n.sent, sentCode{email: user.Email, code: code})
	return nil
}

func (n *recordingNotifier) last() sentCode {
	return n.sent[len(n.sent)-1]
}

func setupAuthTest(t *testing.T) (*gorm.DB, *service.AuthService, *recordingNotifier) {
	db := testhelpers.NewTestDB(t)
	notifier := &recordingNotifier{}
	svc := service.NewAuthService(db, "test-secret", time.Hour, service.NewMemoryDenylist(), notifier)
	svc.SetBcryptCost(bcrypt.MinCost)
	return db, svc, notifier
}

func signupRequest(username string) types.SignupRequest {
	return types.SignupRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Vasya",
		LastName:  "Pupkin",
		Password:  "Str0ng-pass",
	}
}

func fieldKeys(t *testing.T, err error, field string) []string {
	t.Helper()
	var v *service.ValidationError
	require.ErrorAs(t, err, &v)
	keys := make([]string, 0)
	for _, m := range v.Fields[field] {
		keys = append(keys, m.Key)
	}
	return keys
}

func TestSignupAndConfirm(t *testing.T) {
	db, svc, notifier := setupAuthTest(t)
	ctx := context.Background()

	user, created, err := svc.Signup(ctx, signupRequest("vasya"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, user.IsConfirmed)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "vasya@example.com", notifier.last().email)
	assert.Len(t, notifier.last().code, models.ConfirmationCodeLength)

	_, err = svc.ObtainToken(ctx, "vasya", "000000x")
	assert.ErrorIs(t, err, service.ErrInvalidCode)

	token, err := svc.ObtainToken(ctx, "vasya", notifier.last().code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, stored.IsConfirmed)
	assert.Nil(t, stored.ConfirmationCode)

	// The code cannot be reused.
	_, err = svc.ObtainToken(ctx, "vasya", notifier.last().code)
	assert.ErrorIs(t, err, service.ErrInvalidCode)
}

func TestObtainTokenBurnsCodeAfterTooManyMisses(t *testing.T) {
	db, svc, notifier := setupAuthTest(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, signupRequest("petya"))
	require.NoError(t, err)
	code := notifier.last().code
	wrong := "999999"
	if code == wrong {
		wrong = "000000"
	}

	for i := 0; i < models.MaxConfirmationTries; i++ {
		_, err = svc.ObtainToken(ctx, "petya", wrong)
		assert.ErrorIs(t, err, service.ErrInvalidCode)
	}

	var stored models.User
	require.NoError(t, db.Where("username = ?", "petya").First(&stored).Error)
	assert.Nil(t, stored.ConfirmationCode)
	assert.Equal(t, models.MaxConfirmationTries, stored.FailedCodeTries)

	_, err = svc.ObtainToken(ctx, "petya", code)
	assert.ErrorIs(t, err, service.ErrInvalidCode)

	// Signing up again issues a fresh code and resets the counter.
	_, created, err := svc.Signup(ctx, signupRequest("petya"))
	require.NoError(t, err)
	assert.False(t, created)
	token, err := svc.ObtainToken(ctx, "petya", notifier.last().code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestObtainTokenKeepsCodeBelowLimit(t *testing.T) {
	_, svc, notifier := setupAuthTest(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, signupRequest("kolya"))
	require.NoError(t, err)
	code := notifier.last().code

	for i := 0; i < models.MaxConfirmationTries-1; i++ {
		_, err = svc.ObtainToken(ctx, "kolya", "abcdef")
		assert.ErrorIs(t, err, service.ErrInvalidCode)
	}
	token, err := svc.ObtainToken(ctx, "kolya", code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestObtainTokenUnknownUser(t *testing.T) {
	_, svc, _ := setupAuthTest(t)
	_, err := svc.ObtainToken(context.Background(), "ghost", "123456")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestSignupResendsCodeForUnconfirmedUser(t *testing.T) {
	db, svc, notifier := setupAuthTest(t)
	ctx := context.Background()

	first, _, err := svc.Signup(ctx, signupRequest("petya"))
	require.NoError(t, err)

	req := signupRequest("petya")
	req.Email = "  PETYA@example.com "
	req.FirstName = "Pyotr"
	again, created, err := svc.Signup(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, notifier.sent, 2)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var stored models.User
	require.NoError(t, db.First(&stored, first.ID).Error)
	assert.Equal(t, "Pyotr", stored.FirstName)
	require.NotNil(t, stored.ConfirmationCode)
	assert.Equal(t, notifier.last().code, *stored.ConfirmationCode)
}

func TestSignupConflicts(t *testing.T) {
	db, svc, _ := setupAuthTest(t)
	ctx := context.Background()
	testhelpers.CreateUser(t, db, "taken")

	t.Run("email owned by another username", func(t *testing.T) {
		req := signupRequest("fresh")
		req.Email = "taken@example.com"
		_, _, err := svc.Signup(ctx, req)
		assert.Equal(t, []string{i18n.EmailTaken}, fieldKeys(t, err, "email"))
	})

	t.Run("username owned by another email", func(t *testing.T) {
		req := signupRequest("taken")
		req.Email = "other@example.com"
		_, _, err := svc.Signup(ctx, req)
		assert.Equal(t, []string{i18n.UsernameTaken}, fieldKeys(t, err, "username"))
	})

	t.Run("confirmed pair", func(t *testing.T) {
		_, _, err := svc.Signup(ctx, signupRequest("taken"))
		assert.Equal(t, []string{i18n.EmailTaken}, fieldKeys(t, err, "email"))
		assert.Equal(t, []string{i18n.UsernameTaken}, fieldKeys(t, err, "username"))
	})
}

func TestSignupValidation(t *testing.T) {
	_, svc, notifier := setupAuthTest(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		field    string
		key      string
	}{
		{"reserved username", "me", "Str0ng-pass", "username", i18n.UsernameReserved},
		{"reserved username any case", "Me", "Str0ng-pass", "username", i18n.UsernameReserved},
		{"bad characters", "bad name!", "Str0ng-pass", "username", i18n.UsernameInvalid},
		{"short password", "shorty", "abc", "password", i18n.FieldTooShort},
		{"numeric password", "digits", "1234567890", "password", i18n.PasswordNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := signupRequest("placeholder")
			req.Username = tt.username
			req.Password = tt.password
			_, _, err := svc.Signup(ctx, req)
			assert.Contains(t, fieldKeys(t, err, tt.field), tt.key)
		})
	}
	assert.Empty(t, notifier.sent)
}

func TestLogin(t *testing.T) {
	db, svc, _ := setupAuthTest(t)
	ctx := context.Background()
	testhelpers.CreateUser(t, db, "ivan")

	token, err := svc.Login(ctx, "IVAN@example.com", testhelpers.TestPassword)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "ivan", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.NotEmpty(t, claims.ID)

	_, err = svc.Login(ctx, "ivan@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginUnconfirmed(t *testing.T) {
	_, svc, _ := setupAuthTest(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, signupRequest("pending"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, "pending@example.com", "Str0ng-pass")
	assert.ErrorIs(t, err, service.ErrEmailNotConfirmed)
	assert.Equal(t, service.KindForbidden, service.KindOf(err))
}

func TestLogoutRevokesToken(t *testing.T) {
	db, svc, _ := setupAuthTest(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db, "leaving")

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	// Other tokens of the same user stay valid.
	other, err := svc.GenerateToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, other)
	assert.NoError(t, err)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	db, svc, _ := setupAuthTest(t)
	user := testhelpers.CreateUser(t, db, "signed")

	foreign := service.NewAuthService(db, "other-secret", time.Hour, service.NewMemoryDenylist(), &recordingNotifier{})
	token, err := foreign.GenerateToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = svc.ValidateToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestSetPassword(t *testing.T) {
	db, svc, _ := setupAuthTest(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db, "changer")

	err := svc.SetPassword(ctx, user.ID, "wrong", "N3w-password")
	assert.Equal(t, []string{i18n.PasswordWrong}, fieldKeys(t, err, "current_password"))

	err = svc.SetPassword(ctx, user.ID, testhelpers.TestPassword, "123")
	assert.Contains(t, fieldKeys(t, err, "new_password"), i18n.FieldTooShort)

	require.NoError(t, svc.SetPassword(ctx, user.ID, testhelpers.TestPassword, "N3w-password"))

	_, err = svc.Login(ctx, "changer@example.com", "N3w-password")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, "changer@example.com", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}
