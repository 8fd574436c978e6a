package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/logging"
)

// ErrorHandler recovers panics into a JSON 500 and logs them.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logging.Ctx(c.Request.Context()).Error().
					Interface("panic", err).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")
				if c.Writer.Written() {
					c.Abort()
					return
				}
				Abort(c, http.StatusInternalServerError, i18n.M(i18n.InternalError))
			}
		}()
		c.Next()
	}
}
