// Package validation holds the portal's form bindings and turns validator
// failures into messages fit for a notice.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Indian mobile numbers: ten digits starting with 6-9.
var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

var (
	registerOnce sync.Once
	registerErr  error
)

// Register installs the custom rules on gin's validator. Safe to call more
// than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		registerErr = configure(v)
	})
	return registerErr
}

func configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
}

func ValidMobile(s string) bool {
	return mobilePattern.MatchString(strings.TrimSpace(s))
}

var labels = map[string]string{
	"full_name":    "Full Name",
	"dob":          "Date of birth",
	"mobile":       "Mobile number",
	"phone":        "Mobile number",
	"organization": "Organization",
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	if field == "" {
		return "Field"
	}
	return strings.ToUpper(field[:1]) + strings.ReplaceAll(field[1:], "_", " ")
}

// Messages flattens a binding error into one line per failed field. Errors
// that did not come from the validator are returned as a single line.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Please check the form and try again."}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, message(fe))
	}
	return out
}

// First returns the first message of Messages, or "".
func First(err error) string {
	msgs := Messages(err)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[0]
}

func message(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required."
	case "email":
		return "Enter a valid email."
	case "mobile":
		return "Enter a valid 10-digit mobile number."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return name + " must be a date (YYYY-MM-DD)."
	default:
		return name + " is invalid."
	}
}
