package webserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coverlift/coverlift/src/enhance"
	"github.com/coverlift/coverlift/src/webserver"
)

// fakeEnhancer is an Enhancer test double which dispatches to its stub
// function.
type fakeEnhancer struct {
	enhanceStub func(ctx context.Context, req enhance.Request) ([]byte, error)
}

func (f *fakeEnhancer) Enhance(ctx context.Context, req enhance.Request) ([]byte, error) {
	return f.enhanceStub(ctx, req)
}

// TestEnhanceHandler makes sure the request body reaches the pipeline as-is
// and the resulting bytes come back as a JPEG download.
func TestEnhanceHandler(t *testing.T) {
	jpegBytes := []byte("pretend this is a JPEG")

	pipeline := &fakeEnhancer{
		enhanceStub: func(ctx context.Context, req enhance.Request) ([]byte, error) {
			if req.ImageURL != "https://i.scdn.co/image/abc" {
				t.Errorf("unexpected image URL: %s", req.ImageURL)
			}
			if req.Quality != 90 {
				t.Errorf("expected quality 90 but got %d", req.Quality)
			}
			if !req.Progressive {
				t.Errorf("expected the progressive flag to be set")
			}
			return jpegBytes, nil
		},
	}

	handler := webserver.NewEnhanceHandler(pipeline)

	body := `{"imageUrl": "https://i.scdn.co/image/abc", "quality": 90, "progressive": true}`
	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/enhance", strings.NewReader(body))
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected code %d but got %d: %s", http.StatusOK, resp.Code, resp.Body)
	}

	if ct := resp.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected image/jpeg content type but got %s", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "enhanced.jpg") {
		t.Errorf("unexpected content disposition: %s", cd)
	}
	if !bytes.Equal(resp.Body.Bytes(), jpegBytes) {
		t.Errorf("the response body was not the pipeline's output")
	}
}

// TestEnhanceHandlerBadBody makes sure malformed JSON and a missing image
// URL are rejected without ever calling the pipeline.
func TestEnhanceHandlerBadBody(t *testing.T) {
	pipeline := &fakeEnhancer{
		enhanceStub: func(ctx context.Context, req enhance.Request) ([]byte, error) {
			t.Errorf("the pipeline should not have been called")
			return nil, nil
		},
	}

	handler := webserver.NewEnhanceHandler(pipeline)

	for _, body := range []string{`{not json`, `{}`, `{"quality": 90}`} {
		resp := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/enhance", strings.NewReader(body))
		handler.ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Errorf("body `%s`: expected code %d but got %d",
				body, http.StatusBadRequest, resp.Code)
		}
	}
}

// TestEnhanceHandlerErrors makes sure errors from the different pipeline
// stages map to status codes which say whose fault the failure was.
func TestEnhanceHandlerErrors(t *testing.T) {
	tests := []struct {
		desc            string
		pipelineErr     error
		expectedCode    int
		expectedDetails string
	}{
		{
			desc:         "no API key configured",
			pipelineErr:  enhance.ErrNoAPIKey,
			expectedCode: http.StatusBadRequest,
		},
		{
			desc:            "transform service failure",
			pipelineErr:     &enhance.TransformError{StatusCode: 503, Body: "overloaded"},
			expectedCode:    http.StatusBadGateway,
			expectedDetails: "overloaded",
		},
		{
			desc:         "source image failure",
			pipelineErr:  &enhance.SourceError{StatusCode: 404},
			expectedCode: http.StatusInternalServerError,
		},
		{
			desc:         "undecodable transform result",
			pipelineErr:  enhance.ErrNotAnImage,
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, test := range tests {
		pipeline := &fakeEnhancer{
			enhanceStub: func(ctx context.Context, req enhance.Request) ([]byte, error) {
				return nil, test.pipelineErr
			},
		}

		handler := webserver.NewEnhanceHandler(pipeline)

		body := `{"imageUrl": "https://i.scdn.co/image/abc"}`
		resp := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/enhance", strings.NewReader(body))
		handler.ServeHTTP(resp, req)

		if resp.Code != test.expectedCode {
			t.Errorf("%s: expected code %d but got %d",
				test.desc, test.expectedCode, resp.Code)
		}

		var decoded struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("%s: error response was not valid JSON: %s", test.desc, err)
		}
		if decoded.Error == "" {
			t.Errorf("%s: expected an error message in the response", test.desc)
		}
		if test.expectedDetails != "" && !strings.Contains(decoded.Details, test.expectedDetails) {
			t.Errorf("%s: expected details containing `%s` but got `%s`",
				test.desc, test.expectedDetails, decoded.Details)
		}
	}
}
