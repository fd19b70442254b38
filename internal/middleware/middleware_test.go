package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/yatube/internal/auth"
	"github.com/emilythestrangee/yatube/internal/database/databasetest"
	"github.com/emilythestrangee/yatube/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "limits are per IP")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))
}

func TestRateLimitOnlyCountsPosts(t *testing.T) {
	rl := NewIPRateLimiter(1, time.Minute)
	r := gin.New()
	r.Use(RateLimit(rl))
	r.Any("/auth/login/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(method string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/auth/login/", nil))
		return w.Code
	}
	assert.Equal(t, http.StatusOK, do(http.MethodGet))
	assert.Equal(t, http.StatusOK, do(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost))
	assert.Equal(t, http.StatusOK, do(http.MethodGet))
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=/create/", LoginRedirect("/create/"))
	assert.Equal(t, "/auth/login/?next=/follow/%3Fpage%3D2", LoginRedirect("/follow/?page=2"))
}

func newRouter(t *testing.T) (*gin.Engine, *auth.Tokens, *models.User) {
	t.Helper()
	db := databasetest.CreateTempDB(t).GetDB()
	user := &models.User{Username: "leo", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	tokens := auth.NewTokens("secret", time.Hour)

	r := gin.New()
	r.Use(sessions.Sessions("yatube", cookie.NewStore([]byte("secret"))))
	r.Use(CurrentUser(db, tokens))
	r.GET("/private/", LoginRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, User(c).Username)
	})
	return r, tokens, user
}

func TestLoginRequired(t *testing.T) {
	r, tokens, user := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/private/", w.Header().Get("Location"))

	signed, err := tokens.Issue(user)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "leo", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/private/", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
}
