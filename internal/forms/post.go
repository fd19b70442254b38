package forms

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/emilythestrangee/yatube/internal/models"
	"github.com/emilythestrangee/yatube/internal/storage"
)

var PostFields = map[string]Field{
	"text":  {Label: "Post text", HelpText: "Enter the text of the post"},
	"group": {Label: "Group", HelpText: "Pick the group the post belongs to"},
	"image": {Label: "Picture", HelpText: "Pick a picture for the post"},
}

// PostForm creates and edits posts.
type PostForm struct {
	Text       string                `form:"text" json:"text" validate:"required"`
	Group      string                `form:"group" json:"group"`
	ImageClear string                `form:"image-clear" json:"-"`
	Image      *multipart.FileHeader `form:"-" json:"-"`
	Errors     Errors                `form:"-" json:"errors"`
	Fields     map[string]Field      `form:"-" json:"fields"`

	groupID *int
}

func NewPostForm() *PostForm {
	return &PostForm{Errors: Errors{}, Fields: PostFields}
}

// PostFormFrom fills the form with a stored post, for the edit page.
func PostFormFrom(post *models.Post) *PostForm {
	f := NewPostForm()
	f.Text = post.Text
	if post.GroupID != nil {
		f.Group = strconv.Itoa(*post.GroupID)
	}
	return f
}

// BindPost reads a submitted post form, uploads included.
func BindPost(c *gin.Context) (*PostForm, error) {
	f := NewPostForm()
	if err := c.ShouldBindWith(f, binding.Form); err != nil {
		return nil, errors.Wrap(err, "bind post form")
	}
	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		f.Image = fh
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return nil, errors.Wrap(err, "read uploaded image")
	}
	return f, nil
}

// ClearImage is true when the edit form asks to drop the current picture.
func (f *PostForm) ClearImage() bool {
	return f.ImageClear != "" && f.ImageClear != "false" && f.Image == nil
}

// GroupID is the validated group, nil for no group.
func (f *PostForm) GroupID() *int {
	return f.groupID
}

// Valid checks every field; errors are left in f.Errors.
func (f *PostForm) Valid(db *gorm.DB) (bool, error) {
	f.Text = strings.TrimSpace(f.Text)
	f.Group = strings.TrimSpace(f.Group)
	f.groupID = nil
	check(f, f.Errors)

	if f.Group != "" {
		id, err := strconv.Atoi(f.Group)
		if err != nil {
			f.Errors.Add("group", msgInvalidGroup)
		} else {
			var n int64
			if err := db.Model(&models.Group{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return false, errors.Wrap(err, "look up group")
			}
			if n == 0 {
				f.Errors.Add("group", msgInvalidGroup)
			} else {
				f.groupID = &id
			}
		}
	}

	if f.Image != nil {
		file, err := f.Image.Open()
		if err != nil {
			return false, errors.Wrap(err, "open uploaded image")
		}
		_, _, err = storage.DecodeImageConfig(file)
		file.Close()
		if err != nil {
			f.Errors.Add("image", msgInvalidImage)
		}
	}
	return len(f.Errors) == 0, nil
}

type postFields struct {
	Text string
}

// ApplyTo copies the validated text and group onto post. A nil group
// detaches the post from its current one.
func (f *PostForm) ApplyTo(post *models.Post) error {
	if err := copier.Copy(post, &postFields{Text: f.Text}); err != nil {
		return errors.Wrap(err, "copy post form")
	}
	post.GroupID = f.groupID
	post.Group = nil
	return nil
}

// Post builds a new, unsaved post. The caller sets the author.
func (f *PostForm) Post() (*models.Post, error) {
	post := &models.Post{}
	if err := f.ApplyTo(post); err != nil {
		return nil, err
	}
	return post, nil
}
