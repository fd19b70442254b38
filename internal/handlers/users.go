package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/yatube/internal/middleware"
	"github.com/emilythestrangee/yatube/internal/models"
	"github.com/emilythestrangee/yatube/internal/pagination"
)

type UserHandler struct {
	db      *gorm.DB
	perPage int
}

func NewUserHandler(db *gorm.DB, perPage int) *UserHandler {
	return &UserHandler{db: db, perPage: perPage}
}

func (h *UserHandler) author(c *gin.Context) (*models.User, bool) {
	var author models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&author).Error; err != nil {
		dbError(c, err)
		return nil, false
	}
	return &author, true
}

// GetUserProfile lists a user's posts and whether the visitor follows them.
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}

	page, err := pagination.Paginate[models.Post](h.db.Model(&models.Post{}).Where("author_id = ?", author.ID),
		c.Query("page"), h.perPage, models.NewestFirst, models.WithRelations)
	if err != nil {
		ServerError(c, err)
		return
	}

	following := false
	if viewer := middleware.User(c); viewer != nil {
		var n int64
		err := h.db.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", viewer.ID, author.ID).
			Count(&n).Error
		if err != nil {
			ServerError(c, err)
			return
		}
		following = n > 0
	}

	render(c, http.StatusOK, "posts/profile.html", gin.H{
		"author":      author,
		"count_posts": page.Count,
		"page_obj":    page,
		"following":   following,
	})
}

// FollowUser subscribes the current user to an author. Following twice or
// following yourself changes nothing.
func (h *UserHandler) FollowUser(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}
	user := middleware.User(c)
	if user.ID != author.ID {
		follow := models.Follow{UserID: user.ID, AuthorID: author.ID}
		if err := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error; err != nil {
			ServerError(c, errors.Wrap(err, "follow"))
			return
		}
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}

// UnfollowUser removes the subscription if there is one.
func (h *UserHandler) UnfollowUser(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}
	user := middleware.User(c)
	err := h.db.Where("user_id = ? AND author_id = ?", user.ID, author.ID).Delete(&models.Follow{}).Error
	if err != nil {
		ServerError(c, errors.Wrap(err, "unfollow"))
		return
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}
