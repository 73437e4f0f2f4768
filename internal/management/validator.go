package management

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	pkgerrors "flagpost/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// validateRequest runs the struct tags of req and converts failures into a
// validation error carrying one detail per field.
func validateRequest(req interface{}) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.ErrValidation.WithCause(err)
	}

	appErr := pkgerrors.ErrValidation
	messages := make([]string, 0, len(ve))
	for _, fe := range ve {
		msg := fieldMessage(fe)
		messages = append(messages, msg)
		appErr = appErr.WithDetail(fe.Field(), msg)
	}
	return appErr.WithMessage(strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "max":
		return fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func validateWindow(from, to time.Time) error {
	if from.After(to) {
		return pkgerrors.ErrValidation.
			WithDetail("isActiveTo", "isActiveTo must not be before isActiveFrom").
			WithMessage("isActiveTo must not be before isActiveFrom")
	}
	return nil
}

func ValidateCreateAlert(req CreateAlertRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	return validateWindow(*req.IsActiveFrom, *req.IsActiveTo)
}

func ValidateUpdateAlert(req UpdateAlertRequest) error {
	return validateRequest(req)
}

func ValidateCreateFeature(req CreateFeatureRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	return validateWindow(*req.IsActiveFrom, *req.IsActiveTo)
}

func ValidateUpdateFeature(req UpdateFeatureRequest) error {
	return validateRequest(req)
}
