package webserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coverlift/coverlift/src/webserver"
)

// TestHealthHandler makes sure the health endpoint reports the server as up.
func TestHealthHandler(t *testing.T) {
	handler := webserver.NewHealthHandler()

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected code %d but got %d", http.StatusOK, resp.Code)
	}

	var decoded struct {
		OK      bool   `json:"ok"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response was not valid JSON: %s", err)
	}

	if !decoded.OK {
		t.Errorf("the health endpoint did not report ok")
	}
	if decoded.Version == "" {
		t.Errorf("expected a version in the health response")
	}
}
