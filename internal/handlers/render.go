package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/emilythestrangee/yatube/internal/logging"
	"github.com/emilythestrangee/yatube/internal/middleware"
)

const (
	notFoundTemplate    = "core/404.html"
	serverErrorTemplate = "core/500.html"
)

// render offers the page as HTML or, for "Accept: application/json", as
// the same context encoded in JSON.
func render(c *gin.Context, status int, template string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["user"] = middleware.User(c)
	data["template"] = template
	c.Negotiate(status, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: template,
		Data:     data,
	})
}

// NotFound renders the 404 page.
func NotFound(c *gin.Context) {
	render(c, http.StatusNotFound, notFoundTemplate, gin.H{"path": c.Request.URL.Path})
	c.Abort()
}

// ServerError logs err and renders the 500 page.
func ServerError(c *gin.Context, err error) {
	_ = c.Error(err)
	logging.Log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	render(c, http.StatusInternalServerError, serverErrorTemplate, gin.H{})
	c.Abort()
}

// dbError answers a failed lookup: 404 for a missing row, 500 otherwise.
func dbError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c)
		return
	}
	ServerError(c, err)
}

// paramID reads a numeric path parameter.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postURL(id int) string {
	return "/posts/" + strconv.Itoa(id) + "/"
}
