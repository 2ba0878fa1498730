package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors_StatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		typ    ErrorType
	}{
		{NewValidationError("bad"), http.StatusBadRequest, ErrorTypeValidation},
		{NewUnauthorizedError("locked"), http.StatusUnauthorized, ErrorTypeUnauthorized},
		{NewTooLargeError("big"), http.StatusRequestEntityTooLarge, ErrorTypeTooLarge},
		{NewRateLimitedError("slow down"), http.StatusTooManyRequests, ErrorTypeRateLimited},
		{NewNotFoundError("gone"), http.StatusNotFound, ErrorTypeNotFound},
		{NewMethodNotAllowedError("nope"), http.StatusMethodNotAllowed, ErrorTypeMethod},
		{NewInternalError("boom", nil), http.StatusInternalServerError, ErrorTypeInternal},
	}

	for _, tc := range cases {
		if tc.err.StatusCode != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.typ, tc.status, tc.err.StatusCode)
		}
		if !IsType(tc.err, tc.typ) {
			t.Fatalf("expected IsType(%s) to be true", tc.typ)
		}
		if GetStatusCode(tc.err) != tc.status {
			t.Fatalf("%s: GetStatusCode returned %d", tc.typ, GetStatusCode(tc.err))
		}
	}
}

func TestAppError_UnwrapAndWrapped(t *testing.T) {
	sentinel := errors.New("sentinel")
	appErr := NewValidationError("No PDF file provided").WithCause(sentinel)

	if !errors.Is(appErr, sentinel) {
		t.Fatalf("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("handler: %w", appErr)
	if GetStatusCode(wrapped) != http.StatusBadRequest {
		t.Fatalf("expected wrapped status 400, got %d", GetStatusCode(wrapped))
	}
	if GetMessage(wrapped) != "No PDF file provided" {
		t.Fatalf("unexpected message: %s", GetMessage(wrapped))
	}
}

func TestGetStatusCode_PlainError(t *testing.T) {
	err := errors.New("plain")
	if GetStatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500 for plain errors")
	}
	if GetMessage(err) != "Internal server error" {
		t.Fatalf("plain errors must not leak their message, got %q", GetMessage(err))
	}
}

func TestAppError_ErrorString(t *testing.T) {
	err := NewValidationError("Invalid base64 PDF data", "illegal base64 data at input byte 4")
	want := "validation: Invalid base64 PDF data (illegal base64 data at input byte 4)"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
