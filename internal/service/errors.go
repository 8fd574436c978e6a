package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/foodgram/backend/internal/i18n"
)

// Kind classifies a service error for the HTTP layer.
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindConflict
	KindNotFound
	KindForbidden
	KindUnauthorized
)

// Error is a domain error with a localizable message.
type Error struct {
	Kind Kind
	Msg  i18n.Message
}

func (e *Error) Error() string {
	return e.Msg.Key
}

func newError(kind Kind, key string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: i18n.M(key, args...)}
}

// ValidationError maps request fields to their messages.
type ValidationError struct {
	Fields map[string][]i18n.Message
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		keys := make([]string, 0, len(e.Fields[name]))
		for _, m := range e.Fields[name] {
			keys = append(keys, m.Key)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(keys, ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message against field.
func (e *ValidationError) Add(field, key string, args ...interface{}) {
	if e.Fields == nil {
		e.Fields = make(map[string][]i18n.Message)
	}
	e.Fields[field] = append(e.Fields[field], i18n.M(key, args...))
}

// Has reports whether field already carries a message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// OrNil returns nil when nothing was recorded.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Field builds a single-field validation error.
func Field(field, key string, args ...interface{}) *ValidationError {
	v := &ValidationError{}
	v.Add(field, key, args...)
	return v
}

var (
	ErrUserNotFound       = newError(KindNotFound, i18n.UserNotFound)
	ErrRecipeNotFound     = newError(KindNotFound, i18n.RecipeNotFound)
	ErrTagNotFound        = newError(KindNotFound, i18n.TagNotFound)
	ErrNotFound           = newError(KindNotFound, i18n.NotFound)
	ErrShortLinkNotFound  = newError(KindNotFound, i18n.ShortLinkUnknown)
	ErrShoppingListEmpty  = newError(KindNotFound, i18n.ShoppingListEmpty)
	ErrForbidden          = newError(KindForbidden, i18n.PermissionDenied)
	ErrEmailNotConfirmed  = newError(KindForbidden, i18n.EmailNotConfirmed)
	ErrInvalidCredentials = newError(KindInvalid, i18n.CredentialsInvalid)
	ErrInvalidCode        = newError(KindInvalid, i18n.ConfirmationCodeInvalid)
	ErrInvalidToken       = newError(KindUnauthorized, i18n.TokenInvalid)
	ErrSubscribeSelf      = newError(KindInvalid, i18n.SubscribeSelf)
	ErrAlreadySubscribed  = newError(KindConflict, i18n.SubscribeTwice)
	ErrNotSubscribed      = newError(KindInvalid, i18n.NotSubscribed)
)

// KindOf returns the Kind of err, or 0 for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return KindInvalid
	}
	return 0
}
