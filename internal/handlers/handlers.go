package handlers

import (
	"github.com/emilythestrangee/yatube/internal/auth"
	"github.com/emilythestrangee/yatube/internal/config"
	"github.com/emilythestrangee/yatube/internal/database"
	"github.com/emilythestrangee/yatube/internal/pagination"
	"github.com/emilythestrangee/yatube/internal/storage"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	User    *UserHandler
	Group   *GroupHandler
	Core    *CoreHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db database.Service, st storage.Storage, tokens *auth.Tokens, cfg *config.Config) *Handler {
	gormDB := db.GetDB()
	perPage := cfg.PostsPerPage
	if perPage <= 0 {
		perPage = pagination.DefaultPageSize
	}

	return &Handler{
		Auth:    NewAuthHandler(gormDB, tokens),
		Post:    NewPostHandler(gormDB, st, perPage),
		Comment: NewCommentHandler(gormDB),
		User:    NewUserHandler(gormDB, perPage),
		Group:   NewGroupHandler(gormDB, perPage),
		Core:    NewCoreHandler(db, st),
	}
}
