package webserver

import "net/http"

// The following are URL Path endpoints for certain API calls.
const (
	APIv1EndpointCover           = "/api/cover"
	APIv1EndpointFallbackArtwork = "/api/cover/fallback"
	APIv1EndpointEnhance         = "/api/enhance"
	APIv1EndpointHealth          = "/api/health"
)

// APIv1Methods defines on which HTTP methods APIv1 endpoints will respond to.
// It is an uri_path => list of HTTP methods map.
var APIv1Methods map[string][]string = map[string][]string{
	APIv1EndpointCover:           {http.MethodGet},
	APIv1EndpointFallbackArtwork: {http.MethodGet},
	APIv1EndpointEnhance:         {http.MethodPost},
	APIv1EndpointHealth:          {http.MethodGet},
}
