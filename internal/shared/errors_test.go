package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestNewAPIError(t *testing.T) {
	err := NewAPIError("test_code", "test message")
	if err.Code != "test_code" {
		t.Errorf("expected code 'test_code', got '%s'", err.Code)
	}
	if err.Message != "test message" {
		t.Errorf("expected message 'test message', got '%s'", err.Message)
	}
	if err.Details != nil {
		t.Errorf("expected nil details, got %v", err.Details)
	}
}

func TestAPIError_WithDetails(t *testing.T) {
	err := NewAPIError("code", "message")
	details := map[string]string{"field": "value"}
	err = err.WithDetails(details)

	d, ok := err.Details.(map[string]string)
	if !ok {
		t.Fatal("expected details to be map[string]string")
	}
	if d["field"] != "value" {
		t.Errorf("expected field 'value', got '%s'", d["field"])
	}
}

func TestAPIError_JSONUsesErrorKey(t *testing.T) {
	data, err := json.Marshal(NewAPIError("missing_image", "No image provided"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"] != "No image provided" {
		t.Errorf("expected error key to carry the message, got %v", body)
	}
	if body["code"] != "missing_image" {
		t.Errorf("expected code 'missing_image', got %v", body["code"])
	}
	if _, ok := body["details"]; ok {
		t.Error("details should be omitted when empty")
	}
}

func TestAPIError_ToHTTP(t *testing.T) {
	apiErr := NewAPIError("code", "message")
	httpErr := apiErr.ToHTTP(http.StatusBadRequest)

	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, httpErr.Code)
	}
	msg, ok := httpErr.Message.(*APIError)
	if !ok {
		t.Fatal("expected message to be *APIError")
	}
	if msg.Code != "code" {
		t.Errorf("expected code 'code', got '%s'", msg.Code)
	}
}

func TestBadRequest(t *testing.T) {
	err := BadRequest("bad", "bad request")
	assertHTTPError(t, err, http.StatusBadRequest, "bad", "bad request")
}

func TestRequestTooLarge(t *testing.T) {
	err := RequestTooLarge("too_large", "too large")
	assertHTTPError(t, err, http.StatusRequestEntityTooLarge, "too_large", "too large")
}

func TestInternalError(t *testing.T) {
	err := InternalError("internal", "internal error")
	assertHTTPError(t, err, http.StatusInternalServerError, "internal", "internal error")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"missing input", ErrMissingInput, http.StatusBadRequest},
		{"wrapped missing input", fmt.Errorf("image field: %w", ErrMissingInput), http.StatusBadRequest},
		{"invalid media", fmt.Errorf("decode: %w", ErrInvalidMedia), http.StatusBadRequest},
		{"model invocation", fmt.Errorf("%w: status 503", ErrModelInvocation), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func assertHTTPError(t *testing.T, err *echo.HTTPError, expectedStatus int, expectedCode, expectedMessage string) {
	t.Helper()
	if err.Code != expectedStatus {
		t.Errorf("expected status %d, got %d", expectedStatus, err.Code)
	}
	apiErr, ok := err.Message.(*APIError)
	if !ok {
		t.Fatal("expected message to be *APIError")
	}
	if apiErr.Code != expectedCode {
		t.Errorf("expected code '%s', got '%s'", expectedCode, apiErr.Code)
	}
	if apiErr.Message != expectedMessage {
		t.Errorf("expected message '%s', got '%s'", expectedMessage, apiErr.Message)
	}
}
