package spotify

import (
	"errors"
	"fmt"
)

// ErrNoCredentials is returned when the Spotify client ID or secret is
// missing from the configuration. This is a user-actionable condition and
// not a server fault.
var ErrNoCredentials = errors.New("spotify client credentials are not configured")

// ErrUnsupportedType is returned by Client.Fetch for resource types which
// are syntactically valid but not among the kinds the fetcher knows how to
// look up.
var ErrUnsupportedType = errors.New("unsupported resource type")

// UpstreamError represents a non-success response from the Spotify Web API.
// It carries the HTTP status code and a snippet of the response body so the
// failure can be surfaced to the user as-is.
type UpstreamError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("spotify API returned HTTP %d: %s", e.StatusCode, e.Body)
}
