package webutils_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/coverlift/coverlift/src/webserver/webutils"
)

// TestJSONError makes sure the error message and the status code are both
// part of the response.
func TestJSONError(t *testing.T) {
	resp := httptest.NewRecorder()
	webutils.JSONError(resp, "something was wrong", 400)

	if resp.Code != 400 {
		t.Errorf("expected code 400 but got %d", resp.Code)
	}

	var decoded struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response was not valid JSON: %s", err)
	}

	if decoded.Error != "something was wrong" {
		t.Errorf("unexpected error message: %s", decoded.Error)
	}
	if decoded.Details != "" {
		t.Errorf("details should have been omitted but was `%s`", decoded.Details)
	}
}

// TestJSONErrorDetails makes sure the details string is included when set.
func TestJSONErrorDetails(t *testing.T) {
	resp := httptest.NewRecorder()
	webutils.JSONErrorDetails(resp, "transform failed", "HTTP 503 from provider", 502)

	if resp.Code != 502 {
		t.Errorf("expected code 502 but got %d", resp.Code)
	}

	var decoded struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response was not valid JSON: %s", err)
	}

	if decoded.Details != "HTTP 503 from provider" {
		t.Errorf("unexpected details: %s", decoded.Details)
	}
}
