package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"startup_academy_backend/internal/config"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret-32-characters"

type fakeActivityRepo struct {
	mu       sync.Mutex
	ensured  []string
	seen     chan string
	ensureEr error
}

func (f *fakeActivityRepo) EnsureUser(id, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, id+"|"+email)
	return f.ensureEr
}

func (f *fakeActivityRepo) UpdateLastSeen(id string) error {
	f.seen <- id
	return nil
}

func newRouter(repo UserActivityRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	r := gin.New()
	r.Use(ConfigMiddleware(func() *config.Config { return cfg }))
	r.GET("/optional", TryAuthMiddleware(), func(c *gin.Context) {
		if claims := util.GetUserFromContext(c); claims != nil {
			c.String(http.StatusOK, claims.UserID())
			return
		}
		c.String(http.StatusOK, "guest")
	})

	group := r.Group("/api", AuthMiddleware(), ActivityMiddleware(repo), SessionMiddleware())
	group.GET("/session", func(c *gin.Context) {
		c.JSON(http.StatusOK, GetSession(c))
	})
	return r
}

func token(t *testing.T, secret string) string {
	t.Helper()
	tok, err := util.GenerateJWT("user-1", "founder@example.com", secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_RejectsMissingOrInvalidToken(t *testing.T) {
	r := newRouter(&fakeActivityRepo{seen: make(chan string, 1)})

	w := do(r, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/api/session", map[string]string{"Authorization": "Bearer " + token(t, "some-other-secret-of-32-characters!")})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/api/session", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_SessionFromToken(t *testing.T) {
	repo := &fakeActivityRepo{seen: make(chan string, 1)}
	r := newRouter(repo)

	w := do(r, "/api/session", map[string]string{
		"Authorization":      "Bearer " + token(t, testSecret),
		util.LocalDateHeader: "2026-03-10",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"UserID":"user-1","Email":"founder@example.com","Today":"2026-03-10"}`, w.Body.String())

	assert.Equal(t, []string{"user-1|founder@example.com"}, repo.ensured)
	select {
	case id := <-repo.seen:
		assert.Equal(t, "user-1", id)
	case <-time.After(time.Second):
		t.Fatal("last seen was not updated")
	}
}

func TestSessionMiddleware_LocalDate(t *testing.T) {
	r := newRouter(&fakeActivityRepo{seen: make(chan string, 4)})
	auth := "Bearer " + token(t, testSecret)

	w := do(r, "/api/session", map[string]string{"Authorization": auth, util.LocalDateHeader: "10/03/2026"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, "/api/session", map[string]string{"Authorization": auth})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), util.Today())
}

func TestActivityMiddleware_EnsureFailure(t *testing.T) {
	r := newRouter(&fakeActivityRepo{seen: make(chan string, 1), ensureEr: errors.New("db down")})

	w := do(r, "/api/session", map[string]string{"Authorization": "Bearer " + token(t, testSecret)})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTryAuthMiddleware(t *testing.T) {
	r := newRouter(&fakeActivityRepo{seen: make(chan string, 1)})

	assert.Equal(t, "guest", do(r, "/optional", nil).Body.String())
	assert.Equal(t, "guest", do(r, "/optional", map[string]string{"Authorization": "Bearer nope"}).Body.String())
	assert.Equal(t, "user-1", do(r, "/optional", map[string]string{"Authorization": "Bearer " + token(t, testSecret)}).Body.String())
}

func TestGetSession_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, model.Session{}, GetSession(c))
}
