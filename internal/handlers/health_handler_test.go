package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"text/template"

	"mockmate/interviewer/internal/config"
)

func TestHealthzHandler(t *testing.T) {
	handler := NewHealthHandler(&mockProvider{}, &mockPromptManager{}, &config.Config{}, nil)

	recorder := httptest.NewRecorder()
	handler.HealthzHandler(recorder, httptest.NewRequest("GET", "/healthz", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected ok status, got %q", body["status"])
	}
	if body["service"] != "interviewer" {
		t.Errorf("expected service interviewer, got %q", body["service"])
	}
}

func TestReadyzHandlerAllChecksPass(t *testing.T) {
	handler := NewHealthHandler(&mockProvider{}, &mockPromptManager{}, &config.Config{}, nil)

	recorder := httptest.NewRecorder()
	handler.ReadyzHandler(recorder, httptest.NewRequest("GET", "/readyz", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp ReadinessResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ready" {
		t.Errorf("expected ready, got %q", resp.Status)
	}
	for name, check := range resp.Checks {
		if check.Status != "ok" {
			t.Errorf("check %q failed: %+v", name, check)
		}
	}
	if resp.Checks["history"].Message == "" {
		t.Error("expected the history check to note that persistence is disabled")
	}
}

func TestReadyzHandlerMissingProvider(t *testing.T) {
	handler := NewHealthHandler(nil, &mockPromptManager{}, &config.Config{}, nil)

	recorder := httptest.NewRecorder()
	handler.ReadyzHandler(recorder, httptest.NewRequest("GET", "/readyz", nil))

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}

	var resp ReadinessResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "not_ready" {
		t.Errorf("expected not_ready, got %q", resp.Status)
	}
	if resp.Checks["provider"].Status != "failed" {
		t.Errorf("expected the provider check to fail, got %+v", resp.Checks["provider"])
	}
}

func TestReadyzHandlerEmptyTemplates(t *testing.T) {
	pm := &mockPromptManager{
		getTemplatesFn: func() map[string]map[string]*template.Template {
			return map[string]map[string]*template.Template{}
		},
	}
	handler := NewHealthHandler(&mockProvider{}, pm, &config.Config{}, nil)

	recorder := httptest.NewRecorder()
	handler.ReadyzHandler(recorder, httptest.NewRequest("GET", "/readyz", nil))

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}
}
