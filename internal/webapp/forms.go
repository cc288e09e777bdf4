package webapp

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Form schemas mirror what the views collect. Validation runs on submit,
// before anything touches the network; failures re-render the form with
// per-field messages and the submitted values.

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type RegisterForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
	Confirm  string `form:"confirm" validate:"required,eqfield=Password"`
	Role     string `form:"role" validate:"required,oneof=user admin"`
}

type TaskForm struct {
	Title       string `form:"title" validate:"required,min=3,max=120"`
	Description string `form:"description"`
	DueDate     string `form:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

const dueDateLayout = "2006-01-02"

// ParsedDueDate returns the due date as a timestamp, or nil when the field
// was left empty. Call only after validation has passed.
func (f TaskForm) ParsedDueDate() *time.Time {
	if strings.TrimSpace(f.DueDate) == "" {
		return nil
	}
	t, err := time.Parse(dueDateLayout, f.DueDate)
	if err != nil {
		return nil
	}
	return &t
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the form field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateForm returns per-field messages, empty when the form is valid.
func ValidateForm(form any) map[string]string {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"": "Invalid input"}
	}

	msgs := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs[fe.Field()] = fieldMessage(fe)
	}
	return msgs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "Invalid date"
	default:
		return "Invalid value"
	}
}
