package api

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

var (
	registerOnce sync.Once
	registerErr  error
	usernameRe   = regexp.MustCompile(models.UsernamePattern)
)

// RegisterValidators installs the custom binding rules and makes field
// errors carry JSON names. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		}); err != nil {
			registerErr = fmt.Errorf("failed to register username validator: %w", err)
			return
		}
		if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return service.ValidSlug(fl.Field().String())
		}); err != nil {
			registerErr = fmt.Errorf("failed to register slug validator: %w", err)
		}
	})
	return registerErr
}
