package apierr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func handle(t *testing.T, err error) (*httptest.ResponseRecorder, Body, string) {
	t.Helper()
	var logs bytes.Buffer
	e := echo.New()
	e.HTTPErrorHandler = Handler(zerolog.New(&logs))

	req := httptest.NewRequest(http.MethodGet, "/visits", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	e.HTTPErrorHandler(err, c)

	var body Body
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec, body, logs.String()
}

func TestHandler_Validation(t *testing.T) {
	rec, body, logs := handle(t, Validation("Validation failed", "price must be >= 0"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if body.Error != "Validation failed" || body.Code != CodeValidation {
		t.Errorf("unexpected body: %+v", body)
	}
	if len(body.Details) != 1 || body.Details[0] != "price must be >= 0" {
		t.Errorf("expected details to be rendered, got %v", body.Details)
	}
	if logs != "" {
		t.Errorf("expected no log for client errors, got %s", logs)
	}
}

func TestHandler_WrappedError(t *testing.T) {
	rec, body, _ := handle(t, fmt.Errorf("create visit: %w", NotFound("Visit not found")))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if body.Error != "Visit not found" {
		t.Errorf("unexpected message %q", body.Error)
	}
}

func TestHandler_UnexpectedErrorIsGeneric(t *testing.T) {
	rec, body, logs := handle(t, errors.New("pq: relation \"visit\" does not exist"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if body.Error != "Server error" {
		t.Errorf("expected generic message, got %q", body.Error)
	}
	if strings.Contains(rec.Body.String(), "relation") {
		t.Error("internal detail leaked to client")
	}
	if !strings.Contains(logs, "relation") {
		t.Error("expected internal detail in server log")
	}
}

func TestHandler_EchoHTTPError(t *testing.T) {
	rec, body, _ := handle(t, echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	if body.Error != "rate limit exceeded" {
		t.Errorf("unexpected message %q", body.Error)
	}

	rec, body, _ = handle(t, echo.ErrNotFound)
	if rec.Code != http.StatusNotFound || body.Error != "Not Found" {
		t.Errorf("unexpected echo 404 rendering: %d %+v", rec.Code, body)
	}
}

func TestStatusOf(t *testing.T) {
	if StatusOf(Conflict("User already exists")) != http.StatusConflict {
		t.Error("expected 409")
	}
	if StatusOf(errors.New("boom")) != http.StatusInternalServerError {
		t.Error("expected 500")
	}
}
