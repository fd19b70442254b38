package forms

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/emilythestrangee/yatube/internal/auth"
	"github.com/emilythestrangee/yatube/internal/models"
)

var SignupFields = map[string]Field{
	"first_name": {Label: "First name"},
	"last_name":  {Label: "Last name"},
	"username":   {Label: "Username", HelpText: "Required. 150 characters or fewer. Letters, digits and @/./+/-/_ only."},
	"email":      {Label: "Email address"},
	"password1":  {Label: "Password", HelpText: "Your password must contain at least 8 characters."},
	"password2":  {Label: "Password confirmation", HelpText: "Enter the same password as before, for verification."},
}

var LoginFields = map[string]Field{
	"username": {Label: "Username"},
	"password": {Label: "Password"},
}

type SignupForm struct {
	FirstName string           `form:"first_name" json:"first_name" validate:"max=150"`
	LastName  string           `form:"last_name" json:"last_name" validate:"max=150"`
	Username  string           `form:"username" json:"username" validate:"required,max=150,username"`
	Email     string           `form:"email" json:"email" validate:"omitempty,email"`
	Password1 string           `form:"password1" json:"-" validate:"required,min=8"`
	Password2 string           `form:"password2" json:"-" validate:"required,eqfield=Password1"`
	Errors    Errors           `form:"-" json:"errors"`
	Fields    map[string]Field `form:"-" json:"fields"`
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: Errors{}, Fields: SignupFields}
}

func BindSignup(c *gin.Context) (*SignupForm, error) {
	f := NewSignupForm()
	if err := c.ShouldBindWith(f, binding.Form); err != nil {
		return nil, errors.Wrap(err, "bind signup form")
	}
	return f, nil
}

func (f *SignupForm) Valid(db *gorm.DB) (bool, error) {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	check(f, f.Errors)

	if !f.Errors.Has("username") {
		var n int64
		if err := db.Model(&models.User{}).Where("username = ?", f.Username).Count(&n).Error; err != nil {
			return false, errors.Wrap(err, "look up username")
		}
		if n > 0 {
			f.Errors.Add("username", msgUsernameUsed)
		}
	}
	return len(f.Errors) == 0, nil
}

// UsernameTaken records a username clash found only at insert time.
func (f *SignupForm) UsernameTaken() {
	f.Errors.Add("username", msgUsernameUsed)
}

// User builds an unsaved user with a hashed password.
func (f *SignupForm) User() (*models.User, error) {
	user := &models.User{}
	if err := copier.Copy(user, f); err != nil {
		return nil, errors.Wrap(err, "copy signup form")
	}
	hashed, err := auth.HashPassword(f.Password1)
	if err != nil {
		return nil, err
	}
	user.Password = hashed
	return user, nil
}

type LoginForm struct {
	Username string           `form:"username" json:"username" validate:"required"`
	Password string           `form:"password" json:"-" validate:"required"`
	Errors   Errors           `form:"-" json:"errors"`
	Fields   map[string]Field `form:"-" json:"fields"`
}

func NewLoginForm() *LoginForm {
	return &LoginForm{Errors: Errors{}, Fields: LoginFields}
}

func BindLogin(c *gin.Context) (*LoginForm, error) {
	f := NewLoginForm()
	if err := c.ShouldBindWith(f, binding.Form); err != nil {
		return nil, errors.Wrap(err, "bind login form")
	}
	return f, nil
}

// Authenticate checks the credentials and returns the matching user, or
// nil with a form error.
func (f *LoginForm) Authenticate(db *gorm.DB) (*models.User, error) {
	f.Username = strings.TrimSpace(f.Username)
	check(f, f.Errors)
	if len(f.Errors) > 0 {
		return nil, nil
	}
	var user models.User
	err := db.Where("username = ?", f.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !auth.CheckPassword(user.Password, f.Password)) {
		f.Errors.Add(NonField, msgBadLogin)
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "look up user")
	}
	return &user, nil
}
