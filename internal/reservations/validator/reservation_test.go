package validator

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"carbook/pkg/logger"
	"carbook/pkg/model"
)

func testValidator() *ReservationValidator {
	return NewReservationValidator(logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}))
}

func validRequest() *model.ReservationRequest {
	return &model.ReservationRequest{
		VehicleID: "64f1b2c3d4e5f60718293a4b",
		RenterID:  "renter-1",
		StartDate: time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	if err := testValidator().Validate(validRequest()); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func TestValidateRejectsBadVehicleID(t *testing.T) {
	req := validRequest()
	req.VehicleID = "not-an-object-id"

	err := testValidator().Validate(req)
	if err == nil {
		t.Fatal("expected a validation error")
	}

	var validationErrs ValidationErrors
	if !errors.As(err, &validationErrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if !strings.Contains(err.Error(), "VehicleID") {
		t.Errorf("error should name the failing field: %v", err)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	err := testValidator().Validate(&model.ReservationRequest{})
	if err == nil {
		t.Fatal("expected a validation error")
	}

	var validationErrs ValidationErrors
	if !errors.As(err, &validationErrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(validationErrs) < 4 {
		t.Errorf("every required field should be reported, got %d errors", len(validationErrs))
	}
}

func TestValidateRejectsOverlongRenterID(t *testing.T) {
	req := validRequest()
	req.RenterID = strings.Repeat("x", 65)

	if err := testValidator().Validate(req); err == nil {
		t.Error("expected a validation error for an overlong renter ID")
	}
}
