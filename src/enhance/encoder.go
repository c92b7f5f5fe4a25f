package enhance

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"runtime"

	// The following are all image formats supported for re-encoding
	// to the output geometry.
	_ "image/gif"
	_ "image/png"

	// Additional image formats from the x repository.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// TargetSize is the exact width and height in pixels of every image which
// leaves the encoder.
const TargetSize = 3000

// ErrCancelled is returned when one is trying to interact with a stopped
// encoder.
var ErrCancelled = fmt.Errorf("encode operation on cancelled Encoder")

// description is an encoding instruction.
type description struct {

	// Quality is the JPEG quality in [1, 100] with which the output
	// will be encoded.
	Quality int

	// ImgR is the source of the image which will be re-encoded.
	ImgR io.Reader

	// Result is the channel on which the result image is
	// returned.
	Result chan Result
}

// Result is a type which encapsulates a result from an image
// conversion.
type Result struct {
	ImgData []byte
	Err     error
}

// Encoder is a utility type which re-encodes arbitrary images to the fixed
// output geometry on a bounded pool of workers.
type Encoder struct {
	cancelContext context.CancelFunc
	stopped       bool

	work chan description
}

// Encode converts the image (img) to an exactly TargetSize x TargetSize
// JPEG with the given quality. Sources with a non-square aspect ratio are
// cover-fitted, the centre is kept and the overflow is cropped away.
func (e *Encoder) Encode(
	ctx context.Context,
	img io.Reader,
	quality int,
) ([]byte, error) {
	if e.stopped {
		return nil, ErrCancelled
	}

	desc := description{
		ImgR:    img,
		Quality: quality,
		Result:  make(chan Result),
	}

	select {
	case e.work <- desc:
	case <-ctx.Done():
		return nil, fmt.Errorf("ctx done while waiting to send encode op: %w", ctx.Err())
	}

	res := <-desc.Result
	if res.Err != nil {
		return nil, res.Err
	}

	return res.ImgData, nil
}

func (e *Encoder) worker() error {
	for desc := range e.work {
		imgData, err := e.encodeImage(desc.ImgR, desc.Quality)
		desc.Result <- Result{
			ImgData: imgData,
			Err:     err,
		}
	}

	return nil
}

func (e *Encoder) encodeImage(imgReader io.Reader, quality int) ([]byte, error) {
	img, _, err := image.Decode(imgReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, err)
	}

	// Cover fit for a square target is a centred square crop of the
	// source followed by a scale to the target size.
	srcRect := img.Bounds()
	srcW := srcRect.Dx()
	srcH := srcRect.Dy()

	side := srcW
	if srcH < side {
		side = srcH
	}
	crop := image.Rect(0, 0, side, side).Add(image.Point{
		X: srcRect.Min.X + (srcW-side)/2,
		Y: srcRect.Min.Y + (srcH-side)/2,
	})

	dst := image.NewRGBA(image.Rect(0, 0, TargetSize, TargetSize))

	draw.CatmullRom.Scale(
		dst,
		dst.Bounds(),
		img,
		crop,
		draw.Src,
		nil,
	)

	var dstJPEG bytes.Buffer
	opts := &jpeg.Options{Quality: clampQuality(quality)}
	if err := jpeg.Encode(&dstJPEG, dst, opts); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	return dstJPEG.Bytes(), nil
}

// clampQuality forces the quality into the valid [1, 100] range. Out of
// range values are clamped, never rejected.
func clampQuality(quality int) int {
	if quality < 1 {
		return 1
	}
	if quality > 100 {
		return 100
	}
	return quality
}

func (e *Encoder) watchCtx(ctx context.Context) func() error {
	// This function is meant to continuously watch the incoming context
	// and when it is done to close the work channel. This will cause all
	// worker go routines to stop.
	return func() error {
		<-ctx.Done()
		e.stopped = true
		close(e.work)
		return nil
	}
}

// Cancel stops the encoder and all of its operations. Users may not use
// any further methods on cancelled encoders.
func (e *Encoder) Cancel() {
	e.stopped = true
	e.cancelContext()
}

// NewEncoder returns a new encoder, ready for use.
func NewEncoder(ctx context.Context) *Encoder {
	ctx, cancel := context.WithCancel(ctx)

	e := &Encoder{
		cancelContext: cancel,
		work:          make(chan description),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(e.watchCtx(gctx))
	for i := 0; i < runtime.NumCPU(); i++ {
		g.Go(e.worker)
	}

	return e
}
