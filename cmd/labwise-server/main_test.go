package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// parseLogLevel tests
// ---------------------------------------------------------------------------

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// httpErrorHandler tests
// ---------------------------------------------------------------------------

func newErrorContext(method string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/interpret", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHTTPErrorHandler_HTTPError(t *testing.T) {
	c, rec := newErrorContext(http.MethodPost)
	handler := httpErrorHandler(zerolog.Nop())

	handler(echo.NewHTTPError(http.StatusUnprocessableEntity, "lab_values is required"), c)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["error"] != "lab_values is required" {
		t.Errorf("expected error message, got %q", body["error"])
	}
}

func TestHTTPErrorHandler_PlainErrorHidesDetail(t *testing.T) {
	c, rec := newErrorContext(http.MethodPost)
	handler := httpErrorHandler(zerolog.Nop())

	handler(errors.New("dial tcp: connection refused"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("internal error detail leaked to client")
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Errorf("expected generic message, got %q", body["error"])
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	c, rec := newErrorContext(http.MethodGet)
	if err := c.String(http.StatusOK, "already written"); err != nil {
		t.Fatalf("failed to commit response: %v", err)
	}

	handler := httpErrorHandler(zerolog.Nop())
	handler(echo.NewHTTPError(http.StatusInternalServerError, "late error"), c)

	if rec.Code != http.StatusOK {
		t.Errorf("expected committed 200 to stand, got %d", rec.Code)
	}
	if rec.Body.String() != "already written" {
		t.Errorf("expected original body, got %q", rec.Body.String())
	}
}

func TestHTTPErrorHandler_HeadRequestHasNoBody(t *testing.T) {
	c, rec := newErrorContext(http.MethodHead)
	handler := httpErrorHandler(zerolog.Nop())

	handler(echo.NewHTTPError(http.StatusNotFound, "Not Found"), c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body for HEAD, got %q", rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// info endpoint tests
// ---------------------------------------------------------------------------

func TestRootHandler(t *testing.T) {
	c, rec := newErrorContext(http.MethodGet)

	if err := rootHandler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["message"] != "LabWise API" {
		t.Errorf("expected service name, got %q", body["message"])
	}
	if body["version"] != version {
		t.Errorf("expected version %s, got %q", version, body["version"])
	}
	if !strings.HasPrefix(body["disclaimer"], "DISCLAIMER:") {
		t.Errorf("expected disclaimer text, got %q", body["disclaimer"])
	}
}

func TestHealthHandler(t *testing.T) {
	c, rec := newErrorContext(http.MethodGet)

	if err := healthHandler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy status, got %q", body["status"])
	}
}
