package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

type codeRecorder struct {
	mu    sync.Mutex
	codes map[string]string
}

func (r *codeRecorder) SendConfirmationCode(ctx context.Context, user *models.User, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[user.Username] = code
	return nil
}

func (r *codeRecorder) code(username string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[username]
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
	store  *testhelpers.MemoryStore
	codes  *codeRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, api.RegisterValidators())

	db := testhelpers.NewTestDB(t)
	store := testhelpers.NewMemoryStore()
	codes := &codeRecorder{codes: make(map[string]string)}

	auth := service.NewAuthService(db, "test-secret", time.Hour, service.NewMemoryDenylist(), codes)
	auth.SetBcryptCost(bcrypt.MinCost)
	catalog, err := service.NewCatalogService(db)
	require.NoError(t, err)
	shortLinks := service.NewShortLinkService(db, nil)

	bundle, err := i18n.NewBundle("ru")
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.Locale(bundle))

	group := router.Group("/api")
	api.NewAuthHandler(auth, nil).RegisterRoutes(group)
	api.NewUserHandler(service.NewUserService(db, store), service.NewSubscriptionService(db), auth).RegisterRoutes(group)
	api.NewCatalogHandler(catalog, auth).RegisterRoutes(group)
	api.NewRecipeHandler(api.RecipeHandlerDeps{
		Recipes:    service.NewRecipeService(db, store),
		Bookmarks:  service.NewBookmarkService(db),
		Shopping:   service.NewShoppingListService(db),
		ShortLinks: shortLinks,
		Validator:  auth,
	}).RegisterRoutes(group)
	api.NewShortLinkHandler(shortLinks, "").RegisterRoutes(&router.RouterGroup)

	return &testEnv{db: db, router: router, auth: auth, store: store, codes: codes}
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

// do sends a JSON request in English. token may be empty.
func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}
