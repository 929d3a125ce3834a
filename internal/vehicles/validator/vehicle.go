package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"carbook/pkg/logger"
	"carbook/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type VehicleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewVehicleValidator(log *logger.Logger) *VehicleValidator {
	return &VehicleValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *VehicleValidator) Validate(vehicle *model.Vehicle) error {
	if err := v.validate.Struct(vehicle); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	// The operating window is a half-open range like any booking span.
	if vehicle.AvailableFrom != nil && vehicle.AvailableTo != nil {
		if !vehicle.AvailableTo.After(*vehicle.AvailableFrom) {
			return ValidationErrors{
				ValidationError{
					Field:   "AvailableTo",
					Message: "available_to must be after available_from",
				},
			}
		}
	}

	return nil
}

func (v *VehicleValidator) ValidateUpdate(update *model.VehicleUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
