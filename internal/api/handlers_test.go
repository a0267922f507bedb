package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/politech/processor/internal/api"
)

// These exercise the request validation paths, which reject before any
// database query runs.

func get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	api.SetupRoutes().ServeHTTP(rec, req)
	return rec
}

func TestGetPrecinctsUnknownState(t *testing.T) {
	rec := get(t, "/states/XX/precincts")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown state, got %d", rec.Code)
	}
}

func TestGetDotsUnknownState(t *testing.T) {
	rec := get(t, "/states/QQ/dots?group=white")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown state, got %d", rec.Code)
	}
}

func TestGetPlansUnknownStateFilter(t *testing.T) {
	rec := get(t, "/plans?state=XX")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown state filter, got %d", rec.Code)
	}
}
