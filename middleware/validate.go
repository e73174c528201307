package middleware

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the JSON field name, not the Go one
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct runs the tag rules over a request struct and returns a
// field → message map, empty when everything passes.
func ValidateStruct(s interface{}) map[string]string {
	errors := make(map[string]string)

	err := validate.Struct(s)
	if err == nil {
		return errors
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["request"] = "Invalid request data!"
		return errors
	}

	for _, fieldErr := range validationErrors {
		errors[fieldErr.Field()] = validationMessage(fieldErr)
	}
	return errors
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required!"
	case "email":
		return "Invalid email!"
	case "min":
		if fieldErr.Kind() == reflect.String {
			return "Must be at least " + fieldErr.Param() + " characters long!"
		}
		return "Must have at least " + fieldErr.Param() + " items!"
	case "oneof":
		return "Must be one of: " + fieldErr.Param() + "!"
	case "url":
		return "Must be a valid URL!"
	case "gt", "gte":
		return "Must be a positive number!"
	}
	return "Invalid value!"
}
