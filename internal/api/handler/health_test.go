package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReadiness(t *testing.T) {
	e := newTestEcho()

	ok := NewReadinessHandler(map[string]Check{
		"mongodb": func(context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	if err := ok.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	degraded := NewReadinessHandler(map[string]Check{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
	})
	rec = httptest.NewRecorder()
	if err := degraded.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	deps := decodeBody(t, rec)["dependencies"].(map[string]any)
	if deps["redis"].(map[string]any)["status"] != "unhealthy" {
		t.Fatalf("unexpected dependencies: %+v", deps)
	}
}
