package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/yatube/internal/models"
	"github.com/emilythestrangee/yatube/internal/pagination"
)

type GroupHandler struct {
	db      *gorm.DB
	perPage int
}

func NewGroupHandler(db *gorm.DB, perPage int) *GroupHandler {
	return &GroupHandler{db: db, perPage: perPage}
}

// GroupPosts is the feed of one group.
func (h *GroupHandler) GroupPosts(c *gin.Context) {
	var group models.Group
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&group).Error; err != nil {
		dbError(c, err)
		return
	}

	page, err := pagination.Paginate[models.Post](h.db.Model(&models.Post{}).Where("group_id = ?", group.ID),
		c.Query("page"), h.perPage, models.NewestFirst, models.WithRelations)
	if err != nil {
		ServerError(c, err)
		return
	}
	render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"group":    group,
		"page_obj": page,
	})
}
