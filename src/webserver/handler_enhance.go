package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/coverlift/coverlift/src/enhance"
	"github.com/coverlift/coverlift/src/webserver/webutils"
)

// maxEnhanceBodySize is the upper bound for the JSON body of an enhance
// request. The actual image travels by URL so the body is tiny.
const maxEnhanceBodySize = 1 * 1024 * 1024

// Enhancer is the part of the enhance pipeline which the enhance handler
// needs.
type Enhancer interface {
	// Enhance runs the full pipeline for the given request and returns the
	// bytes of the final JPEG.
	Enhance(ctx context.Context, req enhance.Request) ([]byte, error)
}

// EnhanceHandler is a http.Handler which accepts an image URL, runs it
// through the enhancement pipeline and responds with the final JPEG.
type EnhanceHandler struct {
	pipeline Enhancer
}

// enhanceRequestBody is the JSON document the handler accepts.
type enhanceRequestBody struct {
	ImageURL    string `json:"imageUrl"`
	Quality     int    `json:"quality"`
	Progressive bool   `json:"progressive"`
	Endpoint    string `json:"endpoint"`
}

// ServeHTTP is required by the http.Handler's interface
func (eh EnhanceHandler) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(writer, req.Body, maxEnhanceBodySize)

	var body enhanceRequestBody
	dec := json.NewDecoder(req.Body)
	if err := dec.Decode(&body); err != nil {
		webutils.JSONError(
			writer,
			fmt.Sprintf("decoding request body: %s", err),
			http.StatusBadRequest,
		)
		return
	}

	if body.ImageURL == "" {
		webutils.JSONError(writer, "missing `imageUrl` in request body", http.StatusBadRequest)
		return
	}

	jpegBytes, err := eh.pipeline.Enhance(req.Context(), enhance.Request{
		ImageURL:    body.ImageURL,
		Quality:     body.Quality,
		Progressive: body.Progressive,
		Endpoint:    body.Endpoint,
	})
	if err != nil {
		eh.writePipelineError(writer, err)
		return
	}

	writer.Header().Set("Content-Type", "image/jpeg")
	writer.Header().Set("Content-Disposition", `attachment; filename="enhanced.jpg"`)
	writer.Header().Set("Content-Length", strconv.Itoa(len(jpegBytes)))
	if _, err := writer.Write(jpegBytes); err != nil {
		log.Printf("error writing body in EnhanceHandler: %s", err)
	}
}

// writePipelineError maps errors from the different pipeline stages to
// status codes which say whose fault the failure was.
func (eh EnhanceHandler) writePipelineError(writer http.ResponseWriter, err error) {
	var (
		srcErr   *enhance.SourceError
		transErr *enhance.TransformError
	)

	switch {
	case errors.Is(err, enhance.ErrNoAPIKey):
		webutils.JSONError(writer, err.Error(), http.StatusBadRequest)
	case errors.As(err, &transErr):
		webutils.JSONErrorDetails(
			writer,
			"the transform service rejected the image",
			transErr.Error(),
			http.StatusBadGateway,
		)
	case errors.As(err, &srcErr):
		webutils.JSONErrorDetails(
			writer,
			"downloading the source image failed",
			srcErr.Error(),
			http.StatusInternalServerError,
		)
	default:
		webutils.JSONError(writer, err.Error(), http.StatusInternalServerError)
	}
}

// NewEnhanceHandler returns a handler which will run enhance requests
// through the given pipeline.
func NewEnhanceHandler(pipeline Enhancer) *EnhanceHandler {
	return &EnhanceHandler{
		pipeline: pipeline,
	}
}
