package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/emilythestrangee/yatube/internal/auth"
	"github.com/emilythestrangee/yatube/internal/forms"
	"github.com/emilythestrangee/yatube/internal/logging"
	"github.com/emilythestrangee/yatube/internal/middleware"
)

type AuthHandler struct {
	db     *gorm.DB
	tokens *auth.Tokens
}

func NewAuthHandler(db *gorm.DB, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens}
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (h *AuthHandler) SignupPage(c *gin.Context) {
	render(c, http.StatusOK, "users/signup.html", gin.H{"form": forms.NewSignupForm()})
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	form, err := forms.BindSignup(c)
	if err != nil {
		ServerError(c, err)
		return
	}
	valid, err := form.Valid(h.db)
	if err != nil {
		ServerError(c, err)
		return
	}
	if !valid {
		render(c, http.StatusOK, "users/signup.html", gin.H{"form": form})
		return
	}

	user, err := form.User()
	if err != nil {
		ServerError(c, err)
		return
	}
	if err := h.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			form.UsernameTaken()
			render(c, http.StatusOK, "users/signup.html", gin.H{"form": form})
			return
		}
		ServerError(c, errors.Wrap(err, "create user"))
		return
	}
	if err := auth.LoadSession(c).LoginUser(user); err != nil {
		ServerError(c, err)
		return
	}

	logging.Log.WithField("username", user.Username).Info("user registered")
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	render(c, http.StatusOK, "users/login.html", gin.H{
		"form": forms.NewLoginForm(),
		"next": c.Query("next"),
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	form, err := forms.BindLogin(c)
	if err != nil {
		ServerError(c, err)
		return
	}
	user, err := form.Authenticate(h.db)
	if err != nil {
		ServerError(c, err)
		return
	}
	if user == nil {
		render(c, http.StatusOK, "users/login.html", gin.H{"form": form, "next": next})
		return
	}
	if err := auth.LoadSession(c).LoginUser(user); err != nil {
		ServerError(c, err)
		return
	}

	c.Redirect(http.StatusFound, safeNext(next))
}

// Logout ends the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := auth.LoadSession(c).LogoutUser(); err != nil {
		ServerError(c, err)
		return
	}
	middleware.ClearUser(c)
	render(c, http.StatusOK, "users/logged_out.html", gin.H{})
}

// Token exchanges credentials for an API bearer token.
func (h *AuthHandler) Token(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	form := forms.NewLoginForm()
	form.Username, form.Password = input.Username, input.Password
	user, err := form.Authenticate(h.db)
	if err != nil {
		logging.Log.WithError(err).Error("token login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := h.tokens.Issue(user)
	if err != nil {
		logging.Log.WithError(err).Error("cannot sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}
