package webserver

import (
	"log"
	"net/http"

	"github.com/coverlift/coverlift/src/version"
)

// HealthHandler is a http.Handler which reports that the server is up
// along with its version.
type HealthHandler struct{}

// ServeHTTP is required by the http.Handler's interface
func (hh HealthHandler) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	resp := `{"ok":true,"version":"` + version.Version + `"}`
	if _, err := writer.Write([]byte(resp)); err != nil {
		log.Printf("error writing body in HealthHandler: %s", err)
	}
}

// NewHealthHandler returns a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}
