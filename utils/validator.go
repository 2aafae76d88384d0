package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("folder_name", validateFolderName)
	validate.RegisterValidation("hex_color", validateHexColor)

	// Report field names from json tags
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateStruct validates a struct using validator tags
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// ValidationFields maps each offending field to a message, for the 400 body.
func ValidationFields(err error) map[string]interface{} {
	fields := make(map[string]interface{})
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			fields[e.Field()] = getValidationMessage(e)
		}
	} else if err != nil {
		fields["error"] = err.Error()
	}
	return fields
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, getValidationMessage(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

func getValidationMessage(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "strong_password":
		return fmt.Sprintf("%s must contain at least 8 characters with uppercase, lowercase, number and special character", field)
	case "username":
		return fmt.Sprintf("%s must contain only letters, numbers, and underscores", field)
	case "folder_name":
		return fmt.Sprintf("%s contains invalid characters", field)
	case "hex_color":
		return fmt.Sprintf("%s must be a hex color like #a1b2c3", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	hasSpecial := regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`).MatchString(password)

	return hasUpper && hasLower && hasNumber && hasSpecial
}

func validateUsername(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_]+$`, fl.Field().String())
	return matched
}

func validateFolderName(fl validator.FieldLevel) bool {
	// Disallow characters that break paths or downloads
	matched, _ := regexp.MatchString(`^[^<>:"/\\|?*]+$`, fl.Field().String())
	return matched
}

func validateHexColor(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`, fl.Field().String())
	return matched
}
