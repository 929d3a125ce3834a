package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := Conflict("these dates are already booked")
	want := "CONFLICT: these dates are already booked"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestAppErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("Failed to persist reservation", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", err.StatusCode())
	}
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  *AppError
		want int
	}{
		{"not found", NotFound("Vehicle"), http.StatusNotFound},
		{"invalid range", InvalidRange("start date must be before end date"), http.StatusUnprocessableEntity},
		{"conflict", Conflict("overlap"), http.StatusConflict},
		{"inactive", Inactive("v1"), http.StatusConflict},
		{"busy", Busy("vehicle is being booked"), http.StatusServiceUnavailable},
		{"invalid input", InvalidInput("bad page"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.StatusCode() != tc.want {
				t.Errorf("expected %d, got %d", tc.want, tc.err.StatusCode())
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := Busy("try again")
	if !IsCode(err, CodeBusy) {
		t.Error("expected IsCode to match BUSY")
	}
	if IsCode(err, CodeConflict) {
		t.Error("did not expect IsCode to match CONFLICT")
	}
	if IsCode(errors.New("plain"), CodeBusy) {
		t.Error("plain errors must not match any code")
	}
}

func TestAsAppErrorPassthrough(t *testing.T) {
	orig := NotFoundWithID("Reservation", "r42")
	got := AsAppError(orig)
	if got != orig {
		t.Error("expected the same AppError back")
	}

	wrapped := AsAppError(errors.New("boom"))
	if wrapped.Code != CodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", wrapped.Code)
	}
}
