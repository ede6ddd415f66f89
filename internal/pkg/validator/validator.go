package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Material type validation
	validate.RegisterValidation("material_type", func(fl validator.FieldLevel) bool {
		t := fl.Field().String()
		switch t {
		case "notes", "exam", "assignment", "book", "other":
			return true
		}
		return false
	})

	// Course code: letters and digits, e.g. CS101, MATH2040. Case is not
	// checked here; the course service uppercases on create.
	validate.RegisterValidation("course_code", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if len(code) < 2 || len(code) > 16 {
			return false
		}
		for _, c := range code {
			if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') && (c < '0' || c > '9') {
				return false
			}
		}
		return true
	})
}

// Validate validates a struct and returns a field->message map, nil if valid
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["_"] = err.Error()
		return errors
	}

	for _, fieldErr := range validationErrors {
		errors[fieldErr.Field()] = messageFor(fieldErr)
	}
	return errors
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Value is too short (minimum " + fe.Param() + ")"
	case "max":
		return "Value is too long (maximum " + fe.Param() + ")"
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "uuid":
		return "Must be a valid UUID"
	case "material_type":
		return "Must be one of: notes, exam, assignment, book, other"
	case "course_code":
		return "Must be a course code like CS101"
	default:
		return "Invalid value"
	}
}
