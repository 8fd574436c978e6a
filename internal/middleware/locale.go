package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/message"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/logging"
)

const printerKey = "i18n_printer"

var (
	fallbackOnce    sync.Once
	fallbackPrinter *message.Printer
)

// Locale negotiates the response language from Accept-Language.
func Locale(bundle *i18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		accept := c.GetHeader("Accept-Language")
		c.Set(printerKey, bundle.Printer(accept))
		c.Header("Content-Language", bundle.Match(accept).String())
		c.Next()
	}
}

// Printer returns the request's printer, or one for the default language
// when Locale did not run.
func Printer(c *gin.Context) *message.Printer {
	if v, ok := c.Get(printerKey); ok {
		if p, ok := v.(*message.Printer); ok {
			return p
		}
	}
	fallbackOnce.Do(func() {
		bundle, err := i18n.NewBundle("ru")
		if err != nil {
			logging.Error().Err(err).Msg("failed to build fallback message bundle")
			fallbackPrinter = message.NewPrinter(message.MatchLanguage("ru"))
			return
		}
		fallbackPrinter = bundle.Default()
	})
	return fallbackPrinter
}

// Abort stops the chain with {"errors": "<localized message>"}.
func Abort(c *gin.Context, status int, msg i18n.Message) {
	c.AbortWithStatusJSON(status, gin.H{"errors": msg.Localize(Printer(c))})
}
