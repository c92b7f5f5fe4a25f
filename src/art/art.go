// Package art finds cover images on the internet for the cases in which
// Spotify itself has no canonical rendition to offer. It asks the
// MusicBrainz API for releases matching an artist and album pair and then
// tries the Cover Art Archive for each matched release until one of them
// has a front image.
//
// The kind people at MusicBrainz provide their API at no cost for everyone
// to use. They have asked applications to throttle themselves to about one
// request per second, so the client does exactly that.
package art

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pborman/uuid"
	cca "gopkg.in/mineo/gocaa.v1"
)

// ErrImageNotFound is returned by FrontImage when no suitable cover image
// was found anywhere.
var ErrImageNotFound = errors.New("image not found")

// Finder defines a type which is capable of finding album cover art.
type Finder interface {
	// FrontImage returns the front cover artwork for a particular album
	// by an artist.
	FrontImage(ctx context.Context, artist, album string) ([]byte, error)
}

// CAAClient represents a Cover Art Archive client for getting a release
// front image.
type CAAClient interface {
	GetReleaseFront(mbid uuid.UUID, size int) (image cca.CoverArtImage, err error)
}

// Client is a Finder which combines the MusicBrainz search API with the
// Cover Art Archive. It is safe for concurrent use.
//
// Why does the MusicBrainz step return a list of release IDs instead of
// one? A certain album may have many records in MusicBrainz, one per
// release year or country. Generally all releases share the same cover so
// the first one which has any is accepted.
type Client struct {
	sync.Mutex

	// MinScore is the minimal accepted score above which a release is
	// considered a match for the search in the MusicBrainz API. Results
	// come with a 0-100 "score" for how good a match they are. Lowering
	// this value produces more images, some of them inaccurate.
	MinScore int

	delay     time.Duration
	delayer   *time.Timer
	useragent string
	caaClient CAAClient

	musicBrainzAPIHost string
}

// NewClient returns a fully configured Client. The useragent is sent with
// every MusicBrainz request as they require one for identifying
// applications. No more than one request per delay will be made.
func NewClient(useragent string, delay time.Duration) *Client {
	return &Client{
		MinScore:           95,
		useragent:          useragent,
		delay:              delay,
		delayer:            time.NewTimer(delay),
		caaClient:          cca.NewCAAClient(useragent),
		musicBrainzAPIHost: "https://musicbrainz.org",
	}
}
