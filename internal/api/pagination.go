package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/service"
)

// PageResponse is the envelope of every paginated listing.
type PageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageFromQuery reads ?page and ?limit; junk values fall back to defaults.
func pageFromQuery(c *gin.Context) service.Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("limit"))
	return service.Page{Number: number, Size: size}.Normalize()
}

func newPageResponse[T any](c *gin.Context, page service.Page, count int64, results []T) PageResponse[T] {
	if results == nil {
		results = []T{}
	}
	resp := PageResponse[T]{Count: count, Results: results}
	if int64(page.Number)*int64(page.Size) < count {
		next := pageURL(c, page.Number+1)
		resp.Next = &next
	}
	if page.Number > 1 {
		prev := pageURL(c, page.Number-1)
		resp.Previous = &prev
	}
	return resp
}

// pageURL is the current absolute URL with ?page replaced. The first page
// is addressed without a page parameter.
func pageURL(c *gin.Context, number int) string {
	query := c.Request.URL.Query()
	if number <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}
	u := url.URL{
		Scheme:   requestScheme(c),
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// baseURL is the configured public URL, or the request's scheme and host.
func baseURL(c *gin.Context, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	return requestScheme(c) + "://" + c.Request.Host
}
