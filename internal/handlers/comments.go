package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/emilythestrangee/yatube/internal/forms"
	"github.com/emilythestrangee/yatube/internal/middleware"
	"github.com/emilythestrangee/yatube/internal/models"
)

type CommentHandler struct {
	db *gorm.DB
}

func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{db: db}
}

// CreateComment adds a comment to a post (PROTECTED - requires authentication).
// The visitor always lands back on the post; an invalid comment is dropped.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	var post models.Post
	if err := h.db.Select("id").First(&post, id).Error; err != nil {
		dbError(c, err)
		return
	}

	form, err := forms.BindComment(c)
	if err != nil {
		ServerError(c, err)
		return
	}
	if form.Valid() {
		comment := form.Comment()
		comment.PostID = post.ID
		comment.AuthorID = middleware.User(c).ID
		if err := h.db.Create(comment).Error; err != nil {
			ServerError(c, errors.Wrap(err, "create comment"))
			return
		}
	}

	c.Redirect(http.StatusFound, postURL(post.ID))
}
