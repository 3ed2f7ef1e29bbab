package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	return v
}

// Bind decodes the JSON body into dst and validates its struct tags.
func Bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validationf("Invalid request body")
	}
	return Validate(dst)
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validationf("Invalid request body")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apperr.Validationf("%s", strings.Join(msgs, ", "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please provide a valid email address"
	case "max":
		return fmt.Sprintf("%s can not be more than %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "clock":
		return fmt.Sprintf("Please provide valid %s format (HH:MM)", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
