package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/coverlift/coverlift/src/link"
	"github.com/coverlift/coverlift/src/spotify"
	"github.com/coverlift/coverlift/src/webserver/webutils"
)

// CoverFetcher is the part of the Spotify client which the cover handler
// needs.
type CoverFetcher interface {
	// Fetch returns the uniform projection of the resource with this
	// type and ID.
	Fetch(ctx context.Context, kind, id string) (spotify.Resource, error)
}

// CoverHandler is a http.Handler which resolves a pasted link or URI to
// the canonical cover image set of the referenced resource.
type CoverHandler struct {
	fetcher CoverFetcher
}

// ServeHTTP is required by the http.Handler's interface
func (ch CoverHandler) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	input := req.URL.Query().Get("url")
	if input == "" {
		webutils.JSONError(writer, "missing `url` query parameter", http.StatusBadRequest)
		return
	}

	ref, ok := link.Parse(input)
	if !ok {
		// Unrecognised input is the user's problem, not a server fault.
		webutils.JSONError(
			writer,
			"not a recognised Spotify link or URI",
			http.StatusBadRequest,
		)
		return
	}

	res, err := ch.fetcher.Fetch(req.Context(), ref.Type, ref.ID)
	if err != nil {
		ch.writeFetchError(writer, err)
		return
	}

	log.Printf("resolved %s %s with %d canonical images", res.Type, res.ID, len(res.Images))

	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(writer)
	if err := enc.Encode(res); err != nil {
		log.Printf("error writing body in CoverHandler: %s", err)
	}
}

// writeFetchError translates the fetcher's error taxonomy into HTTP status
// codes and JSON error payloads.
func (ch CoverHandler) writeFetchError(writer http.ResponseWriter, err error) {
	var upErr *spotify.UpstreamError

	switch {
	case errors.Is(err, spotify.ErrNoCredentials):
		webutils.JSONError(writer, err.Error(), http.StatusBadRequest)
	case errors.Is(err, spotify.ErrUnsupportedType):
		webutils.JSONError(writer, err.Error(), http.StatusBadRequest)
	case errors.As(err, &upErr) && upErr.StatusCode == http.StatusNotFound:
		webutils.JSONError(writer, "no such resource found", http.StatusNotFound)
	case errors.As(err, &upErr):
		webutils.JSONErrorDetails(
			writer,
			"the Spotify API request failed",
			upErr.Error(),
			http.StatusInternalServerError,
		)
	default:
		webutils.JSONError(writer, err.Error(), http.StatusInternalServerError)
	}
}

// NewCoverHandler returns a new cover resolving handler which will use the
// given fetcher.
func NewCoverHandler(fetcher CoverFetcher) *CoverHandler {
	return &CoverHandler{
		fetcher: fetcher,
	}
}
