package forms

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pkg/errors"

	"github.com/emilythestrangee/yatube/internal/models"
)

var CommentFields = map[string]Field{
	"text": {Label: "Comment text"},
}

type CommentForm struct {
	Text   string           `form:"text" json:"text" validate:"required"`
	Errors Errors           `form:"-" json:"errors"`
	Fields map[string]Field `form:"-" json:"fields"`
}

func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: Errors{}, Fields: CommentFields}
}

func BindComment(c *gin.Context) (*CommentForm, error) {
	f := NewCommentForm()
	if err := c.ShouldBindWith(f, binding.Form); err != nil {
		return nil, errors.Wrap(err, "bind comment form")
	}
	return f, nil
}

func (f *CommentForm) Valid() bool {
	f.Text = strings.TrimSpace(f.Text)
	check(f, f.Errors)
	return len(f.Errors) == 0
}

// Comment builds an unsaved comment; the caller sets post and author.
func (f *CommentForm) Comment() *models.Comment {
	return &models.Comment{Text: f.Text}
}
