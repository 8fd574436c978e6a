// Package i18n holds the message catalog for user-facing text and picks a
// language from the Accept-Language header.
package i18n

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message is a catalog key plus its format arguments, resolved to text
// only once the caller's language is known.
type Message struct {
	Key  string
	Args []interface{}
}

// M builds a Message.
func M(key string, args ...interface{}) Message {
	return Message{Key: key, Args: args}
}

// Localize renders m with p. Integer arguments are passed as plain
// decimal strings so the printer does not apply digit grouping.
func (m Message) Localize(p *message.Printer) string {
	args := make([]interface{}, len(m.Args))
	for i, a := range m.Args {
		switch v := a.(type) {
		case int:
			args[i] = strconv.Itoa(v)
		case uint:
			args[i] = strconv.FormatUint(uint64(v), 10)
		default:
			args[i] = a
		}
	}
	return p.Sprintf(m.Key, args...)
}

// Bundle is the compiled catalog plus language negotiation.
type Bundle struct {
	catalog   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
	fallback  language.Tag
}

// NewBundle builds the catalog. defaultLocale is used when the client
// sends no usable Accept-Language header.
func NewBundle(defaultLocale string) (*Bundle, error) {
	fallback, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid default locale %q: %w", defaultLocale, err)
	}

	supported := []language.Tag{language.Russian, language.English}
	base, _ := fallback.Base()
	switch base.String() {
	case "en":
		fallback = language.English
		supported = []language.Tag{language.English, language.Russian}
	default:
		fallback = language.Russian
	}

	b := catalog.NewBuilder(catalog.Fallback(fallback))
	for tag, msgs := range messages {
		for key, text := range msgs {
			if err := b.SetString(tag, key, text); err != nil {
				return nil, fmt.Errorf("failed to register message %s/%s: %w", tag, key, err)
			}
		}
	}

	return &Bundle{
		catalog:   b,
		supported: supported,
		matcher:   language.NewMatcher(supported),
		fallback:  fallback,
	}, nil
}

// Printer returns a printer for the best match of an Accept-Language value.
func (b *Bundle) Printer(acceptLanguage string) *message.Printer {
	return message.NewPrinter(b.Match(acceptLanguage), message.Catalog(b.catalog))
}

// Match resolves an Accept-Language value to one of the supported tags.
func (b *Bundle) Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return b.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, idx, confidence := b.matcher.Match(tags...)
	if confidence == language.No {
		return b.fallback
	}
	return b.supported[idx]
}

// Default returns a printer for the fallback language.
func (b *Bundle) Default() *message.Printer {
	return message.NewPrinter(b.fallback, message.Catalog(b.catalog))
}
