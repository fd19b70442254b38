package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/emilythestrangee/yatube/internal/auth"
	"github.com/emilythestrangee/yatube/internal/cache"
	"github.com/emilythestrangee/yatube/internal/config"
	"github.com/emilythestrangee/yatube/internal/database"
	"github.com/emilythestrangee/yatube/internal/handlers"
	"github.com/emilythestrangee/yatube/internal/logging"
	"github.com/emilythestrangee/yatube/internal/middleware"
	"github.com/emilythestrangee/yatube/internal/storage"
	"github.com/emilythestrangee/yatube/web"
)

const (
	sessionCookieName     = "sessionid"
	sessionExpirationTime = 14 * 86400 // two weeks
	// SessionCleanupInterval is how often expired sessions are deleted.
	SessionCleanupInterval = time.Hour
)

type Server struct {
	cfg       *config.Config
	db        database.Service
	pageCache cache.Store
	storage   storage.Storage
	tokens    *auth.Tokens
	limiter   *middleware.IPRateLimiter
	sessions  *sessionStore
	handler   *handlers.Handler
}

// NewServer wires the handlers to their dependencies.
func NewServer(cfg *config.Config, db database.Service, pageCache cache.Store, st storage.Storage) *Server {
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	return &Server{
		cfg:       cfg,
		db:        db,
		pageCache: pageCache,
		storage:   st,
		tokens:    tokens,
		limiter:   middleware.NewIPRateLimiter(cfg.LoginRateLimit, time.Minute),
		sessions:  newSessionStore(db.GetDB(), cfg.SessionSecret),
		handler:   handlers.NewHandler(db, st, tokens, cfg),
	}
}

// HTTPServer wraps the router into a server with sane timeouts.
func (s *Server) HTTPServer() (*http.Server, error) {
	router, err := s.RegisterRoutes()
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:         s.cfg.BindAddress,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, nil
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() (*gin.Engine, error) {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.Use(middleware.RequestLogger(), gin.CustomRecovery(handlers.Recovery))

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if !s.cfg.DebugMode {
		r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{storage.MediaURL})))
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	r.SetHTMLTemplate(tmpl)

	s.sessions.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionExpirationTime,
		HttpOnly: true,
		Secure:   len(s.cfg.TLSDomains) > 0,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookieName, s.sessions))
	r.Use(middleware.CurrentUser(s.db.GetDB(), s.tokens))

	h := s.handler
	r.NoRoute(handlers.NotFound)

	// Health check endpoint
	r.GET("/health", h.Core.Health)
	r.GET("/media/*path", h.Core.Media)

	about := r.Group("/about")
	{
		about.GET("/author/", h.Core.AboutAuthor)
		about.GET("/tech/", h.Core.AboutTech)
	}

	limited := middleware.RateLimit(s.limiter)
	accounts := r.Group("/auth")
	{
		accounts.GET("/signup/", h.Auth.SignupPage)
		accounts.POST("/signup/", limited, h.Auth.Register)
		accounts.GET("/login/", h.Auth.LoginPage)
		accounts.POST("/login/", limited, h.Auth.Login)
		accounts.GET("/logout/", h.Auth.Logout)
		accounts.POST("/logout/", h.Auth.Logout)
	}
	r.POST("/api/token/", limited, h.Auth.Token)

	// Public pages
	r.GET("/", cache.Page(s.pageCache, cache.IndexPrefix, s.cfg.PageCacheTTL), h.Post.Index)
	r.GET("/group/:slug/", h.Group.GroupPosts)
	r.GET("/profile/:username/", h.User.GetUserProfile)
	r.GET("/posts/:id/", h.Post.GetPost)

	// Protected routes (authentication required)
	protected := r.Group("")
	protected.Use(middleware.LoginRequired())
	{
		protected.GET("/create/", h.Post.CreatePostPage)
		protected.POST("/create/", h.Post.CreatePost)
		protected.GET("/posts/:id/edit/", h.Post.EditPostPage)
		protected.POST("/posts/:id/edit/", h.Post.UpdatePost)
		protected.POST("/posts/:id/comment/", h.Comment.CreateComment)
		protected.GET("/follow/", h.Post.FollowIndex)
		protected.GET("/profile/:username/follow/", h.User.FollowUser)
		protected.POST("/profile/:username/follow/", h.User.FollowUser)
		protected.GET("/profile/:username/unfollow/", h.User.UnfollowUser)
		protected.POST("/profile/:username/unfollow/", h.User.UnfollowUser)
	}

	logging.Log.WithField("debug", s.cfg.DebugMode).Debug("routes registered")
	return r, nil
}
