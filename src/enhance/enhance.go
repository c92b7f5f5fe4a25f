// Package enhance implements the cover enhancement pipeline. A source
// image is fetched from a user-supplied URL, submitted to a third-party
// transform service and the result is re-encoded to a fixed output
// geometry. Each of the three steps is a distinct failure domain with its
// own error type so that the boundary can tell the user exactly which part
// went wrong.
package enhance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/pborman/uuid"
)

// DefaultEndpoint is the transform service endpoint used when neither the
// configuration nor the request override it.
const DefaultEndpoint = "https://api.imgenhance.io/v1/enhance"

// DefaultQuality is the JPEG quality used when the request does not set
// one.
const DefaultQuality = 95

// maxImageSize bounds how much of a source or transformed image will be
// read into memory. Anything bigger is refused.
const maxImageSize = 40 * 1024 * 1024

// Request describes a single enhancement. Validated at the boundary and
// never persisted.
type Request struct {
	// ImageURL points at the source image.
	ImageURL string

	// Quality is the output JPEG quality. Zero means DefaultQuality and
	// out-of-range values are clamped.
	Quality int

	// Progressive asks for progressive JPEG output. The flag is accepted
	// for compatibility but the encoder emits baseline JPEG.
	Progressive bool

	// Endpoint overrides the transform service endpoint for this request
	// only.
	Endpoint string
}

// Pipeline runs enhancements. It is stateless per request and safe for
// concurrent use.
type Pipeline struct {
	apiKey   string
	endpoint string

	httpClient *http.Client
	encoder    *Encoder
}

// NewPipeline returns a Pipeline which authorises its transform calls with
// apiKey and submits them to endpoint. An empty endpoint means
// DefaultEndpoint. The encoder is shared between requests, its worker pool
// is the actual bound on concurrent re-encodes.
func NewPipeline(apiKey, endpoint string, encoder *Encoder) *Pipeline {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Pipeline{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		encoder:    encoder,
	}
}

// Enhance runs the full fetch, transform, re-encode chain and returns the
// final JPEG bytes. The output always decodes to exactly TargetSize x
// TargetSize pixels.
func (p *Pipeline) Enhance(ctx context.Context, req Request) ([]byte, error) {
	if p.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	srcBytes, contentType, err := p.fetchSource(ctx, req.ImageURL)
	if err != nil {
		return nil, err
	}

	transformed, err := p.transform(ctx, req.endpointOrDefault(p.endpoint), srcBytes, contentType)
	if err != nil {
		return nil, err
	}

	if req.Progressive {
		// Progressive encoding is not supported by the JPEG encoder in
		// use. The output is baseline regardless of the flag.
		log.Printf("progressive output requested for %s, falling back to baseline", req.ImageURL)
	}

	return p.encoder.Encode(ctx, bytes.NewReader(transformed), req.qualityOrDefault())
}

// fetchSource downloads the source image and captures its content type for
// choosing a file extension later.
func (p *Pipeline) fetchSource(ctx context.Context, imageURL string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", &SourceError{Reason: err.Error()}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, "", &SourceError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &SourceError{StatusCode: resp.StatusCode}
	}

	imgBytes, err := readBounded(resp.Body)
	if err != nil {
		return nil, "", &SourceError{Reason: err.Error()}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return imgBytes, contentType, nil
}

// transform packages the image as a multipart upload and submits it to the
// transform service.
func (p *Pipeline) transform(
	ctx context.Context,
	endpoint string,
	imgBytes []byte,
	contentType string,
) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fileName := fmt.Sprintf("upload-%s.%s", uuid.New(), extensionFor(contentType))
	part, err := writer.CreateFormFile("image", fileName)
	if err != nil {
		return nil, fmt.Errorf("creating multipart upload: %w", err)
	}
	if _, err := part.Write(imgBytes); err != nil {
		return nil, fmt.Errorf("writing multipart upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalising multipart upload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("creating transform service request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &TransformError{Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &TransformError{
			StatusCode: resp.StatusCode,
			Body:       string(errBody),
		}
	}

	transformed, err := readBounded(resp.Body)
	if err != nil {
		return nil, &TransformError{Body: err.Error()}
	}

	return transformed, nil
}

// qualityOrDefault resolves the effective output quality of the request.
func (r Request) qualityOrDefault() int {
	if r.Quality == 0 {
		return DefaultQuality
	}
	return clampQuality(r.Quality)
}

// endpointOrDefault resolves the effective transform endpoint, the request
// override wins over the configured one.
func (r Request) endpointOrDefault(configured string) string {
	if r.Endpoint != "" {
		return r.Endpoint
	}
	return configured
}

// extensionFor picks a file extension for the multipart upload based on the
// content type of the source image.
func extensionFor(contentType string) string {
	if strings.Contains(strings.ToLower(contentType), "png") {
		return "png"
	}
	return "jpg"
}

// readBounded reads the whole reader but refuses to go past maxImageSize.
func readBounded(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageSize))
	if (err == nil || errors.Is(err, io.EOF)) && len(data) == maxImageSize {
		return nil, fmt.Errorf("image is bigger than the %d byte limit", maxImageSize)
	}
	if err != nil {
		return nil, err
	}

	return data, nil
}
