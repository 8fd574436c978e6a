package service

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendConfirmationCode(t *testing.T) {
	bundle, err := i18n.NewBundle("en")
	require.NoError(t, err)

	svc := NewEmailService(&config.Config{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  "587",
		EmailFrom: "noreply@example.com",
	}, bundle)

	var gotAddr string
	var gotTo []string
	var gotMsg string
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotMsg = string(msg)
		assert.Nil(t, a)
		return nil
	}

	user := &models.User{Username: "vasya", Email: "vasya@example.com"}
	require.NoError(t, svc.SendConfirmationCode(context.Background(), user, "123456"))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"vasya@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Foodgram confirmation code\r\n")
	assert.Contains(t, gotMsg, "Hello, vasya!")
	assert.Contains(t, gotMsg, "123456")
	assert.True(t, strings.HasPrefix(gotMsg, "To: vasya@example.com\r\n"))
}

func TestSendEmailWithoutSMTP(t *testing.T) {
	bundle, err := i18n.NewBundle("ru")
	require.NoError(t, err)

	svc := NewEmailService(&config.Config{}, bundle)
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		t.Fatal("send must not be called without an SMTP host")
		return nil
	}
	assert.NoError(t, svc.SendEmail(context.Background(), "a@example.com", "subject", "body"))
}
