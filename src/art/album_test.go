package art_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/pborman/uuid"
	cca "gopkg.in/mineo/gocaa.v1"

	"github.com/coverlift/coverlift/src/art"
)

const (
	mbidNoImage   = "b89cab31-9b10-4b6b-9fed-4f9c8e172db1"
	mbidWithImage = "c6f5c0ab-d661-4071-9b58-b68eca9a6a0e"
	mbidLowScore  = "10fb948c-bbaf-4c06-8eb3-a2fbc96e0342"
)

var mbReleasesXML = fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<metadata>
	<release-list count="3" offset="0">
		<release id="%s" ext:score="100"><title>Powerslave</title></release>
		<release id="%s" ext:score="98"><title>Powerslave</title></release>
		<release id="%s" ext:score="50"><title>Powerslave But Worse</title></release>
	</release-list>
</metadata>`, mbidNoImage, mbidWithImage, mbidLowScore)

// fakeCAA is a CAAClient test double backed by a map of release mbid to
// image bytes. Any mbid not in the map gets a 404.
type fakeCAA struct {
	images map[string][]byte
	calls  int
}

func (f *fakeCAA) GetReleaseFront(mbid uuid.UUID, size int) (cca.CoverArtImage, error) {
	f.calls++

	data, ok := f.images[mbid.String()]
	if !ok {
		return cca.CoverArtImage{}, cca.HTTPError{
			StatusCode: http.StatusNotFound,
			URL:        &url.URL{},
		}
	}

	return cca.CoverArtImage{Data: data}, nil
}

// newTestClient returns an art Client pointed at a test MusicBrainz server
// and using the given Cover Art Archive double.
func newTestClient(t *testing.T, caaClient art.CAAClient) *art.Client {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/2/release/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("query") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Header.Get("User-Agent") != "test-useragent" {
			t.Errorf("MusicBrainz call had no User-Agent set")
		}

		fmt.Fprint(w, mbReleasesXML)
	}))
	t.Cleanup(ts.Close)

	client := art.NewClient("test-useragent", time.Millisecond)
	client.SetCAAClient(caaClient)
	client.SetMusicBrainzAPIURL(ts.URL)

	return client
}

// TestFrontImage makes sure that the first matched release which actually
// has a cover in the archive wins.
func TestFrontImage(t *testing.T) {
	imgBytes := []byte("the actual cover art")
	caaClient := &fakeCAA{
		images: map[string][]byte{
			mbidWithImage: imgBytes,
		},
	}

	client := newTestClient(t, caaClient)

	found, err := client.FrontImage(context.Background(), "Iron Maiden", "Powerslave")
	if err != nil {
		t.Fatalf("finding a front image failed: %s", err)
	}

	if string(found) != string(imgBytes) {
		t.Errorf("expected `%s` but got `%s`", imgBytes, found)
	}
}

// TestFrontImageNotFound makes sure ErrImageNotFound is returned when the
// archive has nothing for any of the matched releases. Low scored matches
// must not be tried at all.
func TestFrontImageNotFound(t *testing.T) {
	caaClient := &fakeCAA{}
	client := newTestClient(t, caaClient)

	_, err := client.FrontImage(context.Background(), "Iron Maiden", "Powerslave")
	if !errors.Is(err, art.ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound but got %v", err)
	}

	if caaClient.calls != 2 {
		t.Errorf("expected 2 archive calls but got %d", caaClient.calls)
	}
}

// TestFrontImageUpstreamDown makes sure a MusicBrainz failure is reported
// as an error instead of an empty result.
func TestFrontImageUpstreamDown(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := art.NewClient("test-useragent", time.Millisecond)
	client.SetCAAClient(&fakeCAA{})
	client.SetMusicBrainzAPIURL(ts.URL)

	if _, err := client.FrontImage(context.Background(), "a", "b"); err == nil {
		t.Errorf("expected an error for an upstream failure but got nil")
	}
}
