package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/emilythestrangee/yatube/internal/forms"
	"github.com/emilythestrangee/yatube/internal/logging"
	"github.com/emilythestrangee/yatube/internal/middleware"
	"github.com/emilythestrangee/yatube/internal/models"
	"github.com/emilythestrangee/yatube/internal/pagination"
	"github.com/emilythestrangee/yatube/internal/storage"
)

const postFormTemplate = "posts/create_post.html"

type PostHandler struct {
	db      *gorm.DB
	storage storage.Storage
	perPage int
}

func NewPostHandler(db *gorm.DB, st storage.Storage, perPage int) *PostHandler {
	return &PostHandler{db: db, storage: st, perPage: perPage}
}

// Index is the feed of every post.
func (h *PostHandler) Index(c *gin.Context) {
	page, err := pagination.Paginate[models.Post](h.db.Model(&models.Post{}), c.Query("page"), h.perPage,
		models.NewestFirst, models.WithRelations)
	if err != nil {
		ServerError(c, err)
		return
	}
	render(c, http.StatusOK, "posts/index.html", gin.H{"page_obj": page})
}

// GetPost shows one post with its comments and an empty comment form.
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	var post models.Post
	if err := h.db.Scopes(models.WithRelations).First(&post, id).Error; err != nil {
		dbError(c, err)
		return
	}

	var authorPosts int64
	if err := h.db.Model(&models.Post{}).Where("author_id = ?", post.AuthorID).Count(&authorPosts).Error; err != nil {
		ServerError(c, err)
		return
	}

	comments := []models.Comment{}
	if err := h.db.Where("post_id = ?", post.ID).Preload("Author").Scopes(models.NewestFirst).Find(&comments).Error; err != nil {
		ServerError(c, err)
		return
	}

	render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"post":             post,
		"post_title":       post.Headline(),
		"author":           post.Author,
		"author_cnt_posts": authorPosts,
		"comments":         comments,
		"form":             forms.NewCommentForm(),
	})
}

func (h *PostHandler) groups() ([]models.Group, error) {
	groups := []models.Group{}
	err := h.db.Order("title").Find(&groups).Error
	return groups, errors.Wrap(err, "list groups")
}

func (h *PostHandler) renderForm(c *gin.Context, form *forms.PostForm, post *models.Post) {
	groups, err := h.groups()
	if err != nil {
		ServerError(c, err)
		return
	}
	data := gin.H{
		"form":    form,
		"groups":  groups,
		"is_edit": post != nil,
	}
	if post != nil {
		data["post"] = post
	}
	render(c, http.StatusOK, postFormTemplate, data)
}

// CreatePostPage shows an empty post form.
func (h *PostHandler) CreatePostPage(c *gin.Context) {
	h.renderForm(c, forms.NewPostForm(), nil)
}

// CreatePost publishes a post as the current user (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	user := middleware.User(c)

	form, err := forms.BindPost(c)
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
		h.renderForm(c, form, nil)
		return
	}

	post, err := form.Post()
	if err != nil {
		ServerError(c, err)
		return
	}
	post.AuthorID = user.ID
	stored, _, err := h.saveImage(c, form, post)
	if err != nil {
		ServerError(c, err)
		return
	}
	if err := h.db.Create(post).Error; err != nil {
		h.dropImage(c, stored, "cannot delete unused upload")
		ServerError(c, errors.Wrap(err, "create post"))
		return
	}

	logging.Log.WithField("post_id", post.ID).WithField("author", user.Username).Info("post created")
	c.Redirect(http.StatusFound, profileURL(user.Username))
}

// saveImage stores the uploaded picture, or clears the current one when
// asked to. It returns the new upload and the files the post no longer uses;
// either may be nil.
func (h *PostHandler) saveImage(c *gin.Context, form *forms.PostForm, post *models.Post) (stored, replaced *storage.StoredImage, err error) {
	previous := &storage.StoredImage{Path: post.Image, Thumbnail: post.Thumbnail}
	switch {
	case form.Image != nil:
		file, err := form.Image.Open()
		if err != nil {
			return nil, nil, errors.Wrap(err, "open uploaded image")
		}
		defer file.Close()
		stored, err = storage.SavePostImage(c.Request.Context(), h.storage, file)
		if err != nil {
			return nil, nil, err
		}
		post.Image, post.Thumbnail = stored.Path, stored.Thumbnail
	case form.ClearImage():
		post.Image, post.Thumbnail = "", ""
	default:
		return nil, nil, nil
	}
	if previous.Path == "" && previous.Thumbnail == "" {
		return stored, nil, nil
	}
	return stored, previous, nil
}

// dropImage removes files best-effort; failures are only logged.
func (h *PostHandler) dropImage(c *gin.Context, img *storage.StoredImage, msg string) {
	if img == nil {
		return
	}
	if err := storage.DeletePostImage(c.Request.Context(), h.storage, *img); err != nil {
		logging.Log.WithError(err).WithField("image", img.Path).Warn(msg)
	}
}

func (h *PostHandler) loadOwnPost(c *gin.Context) (*models.Post, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		NotFound(c)
		return nil, false
	}
	var post models.Post
	if err := h.db.Scopes(models.WithRelations).First(&post, id).Error; err != nil {
		dbError(c, err)
		return nil, false
	}
	// Check ownership
	if post.AuthorID != middleware.User(c).ID {
		c.Redirect(http.StatusFound, postURL(post.ID))
		return nil, false
	}
	return &post, true
}

// EditPostPage shows the edit form to the post's author; everybody else is
// sent to the post.
func (h *PostHandler) EditPostPage(c *gin.Context) {
	post, ok := h.loadOwnPost(c)
	if !ok {
		return
	}
	h.renderForm(c, forms.PostFormFrom(post), post)
}

// UpdatePost updates an existing post (PROTECTED - requires ownership)
func (h *PostHandler) UpdatePost(c *gin.Context) {
	post, ok := h.loadOwnPost(c)
	if !ok {
		return
	}

	form, err := forms.BindPost(c)
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
		h.renderForm(c, form, post)
		return
	}

	if err := form.ApplyTo(post); err != nil {
		ServerError(c, err)
		return
	}
	stored, replaced, err := h.saveImage(c, form, post)
	if err != nil {
		ServerError(c, err)
		return
	}
	// pub_date is never written on update
	err = h.db.Model(post).Select("Text", "GroupID", "Image", "Thumbnail").Updates(post).Error
	if err != nil {
		h.dropImage(c, stored, "cannot delete unused upload")
		ServerError(c, errors.Wrap(err, "update post"))
		return
	}
	h.dropImage(c, replaced, "cannot delete replaced image")

	c.Redirect(http.StatusFound, postURL(post.ID))
}

// FollowIndex is the feed of the authors the current user follows.
func (h *PostHandler) FollowIndex(c *gin.Context) {
	user := middleware.User(c)
	followed := h.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", user.ID)
	page, err := pagination.Paginate[models.Post](
		h.db.Model(&models.Post{}).Where("author_id IN (?)", followed), c.Query("page"), h.perPage,
		models.NewestFirst, models.WithRelations)
	if err != nil {
		ServerError(c, err)
		return
	}
	render(c, http.StatusOK, "posts/follow.html", gin.H{"page_obj": page})
}
