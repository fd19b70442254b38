package forms

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// NonField keys errors that belong to the whole form.
const NonField = "__all__"

const (
	msgRequired     = "This field is required."
	msgInvalidGroup = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgEmail        = "Enter a valid email address."
	msgUsername     = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgUsernameUsed = "A user with that username already exists."
	msgPasswordsDif = "The two password fields didn't match."
	msgBadLogin     = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

// Field carries the label and help text shown next to an input.
type Field struct {
	Label    string `json:"label"`
	HelpText string `json:"help_text,omitempty"`
}

// Errors maps a form field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Get returns the first message of field.
func (e Errors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields under their form names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// check runs the struct tags of form and records a message per failed field.
func check(form interface{}, errs Errors) {
	err := validate.Struct(form)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add(NonField, err.Error())
		return
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), utf8.RuneCountInString(fmt.Sprint(fe.Value())))
	case "min":
		return fmt.Sprintf("This value is too short. It must contain at least %s characters.", fe.Param())
	case "email":
		return msgEmail
	case "username":
		return msgUsername
	case "eqfield":
		return msgPasswordsDif
	}
	return fmt.Sprintf("Invalid value (%s).", fe.Tag())
}
