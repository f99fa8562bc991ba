package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eduhealth/schoolhealth/internal/app/models"
)

// Validation rule patterns
var (
	// Student code: letters followed by digits, e.g. HS0001
	StudentCodePattern = `^[A-Z]{1,4}[0-9]{3,10}$`

	// Phone: optional leading +, digits, spaces and dashes
	PhonePattern = `^\+?[0-9][0-9 \-]{6,18}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	StudentCode *regexp.Regexp
	Phone       *regexp.Regexp
}{
	StudentCode: regexp.MustCompile(StudentCodePattern),
	Phone:       regexp.MustCompile(PhonePattern),
}

// Register adds the custom tags used by request DTOs and reports JSON names in field errors
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonTagName)

	rules := map[string]validator.Func{
		"schedule_status": func(fl validator.FieldLevel) bool {
			return models.ScheduleStatus(fl.Field().String()).IsValid()
		},
		"delivery_status": func(fl validator.FieldLevel) bool {
			return models.DeliveryStatus(fl.Field().String()).IsValid()
		},
		"student_code": func(fl validator.FieldLevel) bool {
			return CompiledPatterns.StudentCode.MatchString(fl.Field().String())
		},
		"phone": func(fl validator.FieldLevel) bool {
			return CompiledPatterns.Phone.MatchString(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func jsonTagName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
