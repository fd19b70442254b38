package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/yatube/internal/auth"
	"github.com/emilythestrangee/yatube/internal/logging"
	"github.com/emilythestrangee/yatube/internal/models"
)

// LoginURL is where anonymous visitors of protected pages are sent.
const LoginURL = "/auth/login/"

const (
	userKey   = "user"
	userIDKey = "user_id"
)

// CurrentUser resolves the visitor from the session cookie or, failing
// that, from an "Authorization: Bearer <jwt>" header. Anonymous visitors
// pass through with no user set.
func CurrentUser(db *gorm.DB, tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip middleware for OPTIONS requests (CORS preflight)
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		user := auth.LoadSession(c).User(db)
		if user == nil {
			user = bearerUser(c, db, tokens)
		}
		if user != nil {
			c.Set(userKey, user)
			c.Set(userIDKey, user.ID)
		}
		c.Next()
	}
}

func bearerUser(c *gin.Context, db *gorm.DB, tokens *auth.Tokens) *models.User {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil
	}
	claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		logging.Log.WithError(err).Debug("rejected bearer token")
		return nil
	}
	var user models.User
	if err := db.First(&user, claims.UserID).Error; err != nil {
		return nil
	}
	return &user
}

// User returns the authenticated visitor or nil.
func User(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// LoginRedirect builds the login address that returns to next afterwards.
func LoginRedirect(next string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// LoginRequired sends anonymous visitors to the login page.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if User(c) == nil {
			c.Redirect(http.StatusFound, LoginRedirect(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClearUser forgets the visitor for the rest of the request.
func ClearUser(c *gin.Context) {
	c.Set(userKey, (*models.User)(nil))
	c.Set(userIDKey, 0)
}
