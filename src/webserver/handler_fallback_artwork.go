package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/coverlift/coverlift/src/art"
	"github.com/coverlift/coverlift/src/webserver/webutils"
)

// FallbackArtworkHandler is a http.Handler which looks up album cover art
// in the Cover Art Archive when Spotify has nothing usable.
type FallbackArtworkHandler struct {
	finder art.Finder
}

// ServeHTTP is required by the http.Handler's interface
func (fah FallbackArtworkHandler) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()
	artist := query.Get("artist")
	album := query.Get("album")

	if artist == "" || album == "" {
		webutils.JSONError(
			writer,
			"both `artist` and `album` query parameters are required",
			http.StatusBadRequest,
		)
		return
	}

	imgBytes, err := fah.finder.FrontImage(req.Context(), artist, album)
	if errors.Is(err, art.ErrImageNotFound) {
		webutils.JSONError(writer, "no cover art found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("error finding fallback artwork for %s - %s: %s", artist, album, err)
		webutils.JSONError(writer, err.Error(), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Cache-Control", "max-age=604800")
	if _, err := writer.Write(imgBytes); err != nil {
		log.Printf("error writing body in FallbackArtworkHandler: %s", err)
	}
}

// NewFallbackArtworkHandler returns a new fallback artwork handler which
// uses the given finder.
func NewFallbackArtworkHandler(finder art.Finder) *FallbackArtworkHandler {
	return &FallbackArtworkHandler{
		finder: finder,
	}
}
