package validation

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/julianstephens/habitlens/internal/errors"
	"github.com/julianstephens/habitlens/internal/models"
)

var unitPattern = regexp.MustCompile(`^[\p{L} /%]+$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the habitlens tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("unit", validUnit)
		_ = v.RegisterValidation("finite", validFinite)
		instance = v
	})
	return instance
}

// ValidUnit reports whether s is an acceptable unit label
func ValidUnit(s string) bool {
	return strings.TrimSpace(s) != "" && unitPattern.MatchString(s)
}

func validUnit(fl validator.FieldLevel) bool {
	return ValidUnit(fl.Field().String())
}

func validFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ValidateHabit checks a habit before it is written
func ValidateHabit(h models.Habit) error {
	h.Name = strings.TrimSpace(h.Name)
	return check(h)
}

// ValidateEntry checks a daily entry before it is written
func ValidateEntry(e models.DailyEntry) error {
	return check(e)
}

// ValidateLog checks a habit log value
func ValidateLog(l models.HabitLog) error {
	return check(l)
}

func check(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !asValidationErrors(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, strings.Join(msgs, "; "))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "unit":
		return fmt.Sprintf("%s must contain only letters, spaces, '/' or '%%'", fe.Field())
	case "finite":
		return fmt.Sprintf("%s must be a finite number", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
