package enhance

import (
	"errors"
	"fmt"
)

// ErrNoAPIKey is returned when no API key for the transform service is
// configured. A user-actionable condition, not a server fault.
var ErrNoAPIKey = errors.New("enhance service API key is not configured")

// ErrNotAnImage is returned when the bytes coming back from the transform
// service could not be decoded as an image.
var ErrNotAnImage = errors.New("transformed bytes are not a decodable image")

// SourceError means fetching the original image from the user-supplied URL
// failed. It carries the status returned by the host of the image, zero
// when the request never got that far.
type SourceError struct {
	StatusCode int
	Reason     string
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching source image failed with HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("fetching source image failed: %s", e.Reason)
}

// TransformError means the transform service itself rejected or failed the
// enhancement call. The status and body are kept so that the client can
// tell a provider outage apart from a bad source image.
type TransformError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	return fmt.Sprintf("transform service returned HTTP %d: %s", e.StatusCode, e.Body)
}
