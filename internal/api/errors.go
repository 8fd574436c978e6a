package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

var kindStatus = map[service.Kind]int{
	service.KindInvalid:      http.StatusBadRequest,
	service.KindConflict:     http.StatusBadRequest,
	service.KindNotFound:     http.StatusNotFound,
	service.KindForbidden:    http.StatusForbidden,
	service.KindUnauthorized: http.StatusUnauthorized,
}

// respondError writes err as JSON. Field errors become {"field": [...]},
// classified service errors {"errors": "..."}, anything else a logged 500.
func respondError(c *gin.Context, err error) {
	p := middleware.Printer(c)

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		body := make(gin.H, len(verr.Fields))
		for field, msgs := range verr.Fields {
			texts := make([]string, 0, len(msgs))
			for _, m := range msgs {
				texts = append(texts, m.Localize(p))
			}
			body[field] = texts
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	var serr *service.Error
	if errors.As(err, &serr) {
		status, ok := kindStatus[serr.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"errors": serr.Msg.Localize(p)})
		return
	}

	logging.Ctx(c.Request.Context()).Error().Err(err).
		Str("path", c.Request.URL.Path).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"errors": i18n.M(i18n.InternalError).Localize(p)})
}

// bindJSON decodes the body into obj and reports binding problems the same
// way service validation does. It returns false after responding.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		verr := &service.ValidationError{}
		for _, fe := range fieldErrs {
			switch fe.Tag() {
			case "required":
				verr.Add(fe.Field(), i18n.FieldRequired)
			case "max":
				verr.Add(fe.Field(), i18n.FieldTooLong, fe.Param())
			case "email":
				verr.Add(fe.Field(), i18n.FieldInvalidEmail)
			case "username":
				verr.Add(fe.Field(), i18n.UsernameInvalid)
			case "slug":
				verr.Add(fe.Field(), i18n.FieldInvalidSlug)
			default:
				verr.Add(fe.Field(), i18n.FieldInvalidFormat)
			}
		}
		return verr
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return service.Field(typeErr.Field, i18n.FieldInvalidFormat)
	}

	return &service.Error{Kind: service.KindInvalid, Msg: i18n.M(i18n.FieldInvalidJSON)}
}
