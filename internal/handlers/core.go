package handlers

import (
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/emilythestrangee/yatube/internal/database"
	"github.com/emilythestrangee/yatube/internal/logging"
	"github.com/emilythestrangee/yatube/internal/storage"
)

// CoreHandler serves the pages that are not about posts.
type CoreHandler struct {
	db      database.Service
	storage storage.Storage
}

func NewCoreHandler(db database.Service, st storage.Storage) *CoreHandler {
	return &CoreHandler{db: db, storage: st}
}

func (h *CoreHandler) AboutAuthor(c *gin.Context) {
	render(c, http.StatusOK, "about/author.html", nil)
}

func (h *CoreHandler) AboutTech(c *gin.Context) {
	render(c, http.StatusOK, "about/tech.html", nil)
}

// Health reports the database state.
func (h *CoreHandler) Health(c *gin.Context) {
	stats := h.db.Health()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}

// Media streams an uploaded file.
func (h *CoreHandler) Media(c *gin.Context) {
	p := c.Param("path")
	file, err := h.storage.Open(c.Request.Context(), p)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidPath) {
		NotFound(c)
		return
	}
	if err != nil {
		ServerError(c, err)
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(path.Ext(p))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, file, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}

// Recovery answers a panic with the 500 page.
func Recovery(c *gin.Context, recovered any) {
	logging.Log.WithField("panic", recovered).WithField("path", c.Request.URL.Path).Error("panic recovered")
	render(c, http.StatusInternalServerError, serverErrorTemplate, gin.H{})
	c.Abort()
}
