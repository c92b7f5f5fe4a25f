package art

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	cca "gopkg.in/mineo/gocaa.v1"
)

const (
	musicBrainzReleaseEndpoint   = "%s/ws/2/release/"
	musicBrainzReleaseQueryValue = "release:%s AND artist:%s"
)

// FrontImage returns the front cover for particular `album` from `artist`.
func (c *Client) FrontImage(
	ctx context.Context,
	artist,
	album string,
) ([]byte, error) {
	mbIDs, err := c.getMusicBrainzReleaseIDs(ctx, artist, album)
	if err != nil {
		return nil, err
	}

	for _, mbidStr := range mbIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mbid := cca.StringToUUID(mbidStr)
		img, err := c.caaClient.GetReleaseFront(mbid, cca.ImageSize500)
		if err == nil {
			log.Printf("found fallback cover for artist(%s) album(%s) with mbID %s",
				artist, album, mbidStr)
			return img.Data, nil
		}

		var httpErr cca.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			continue
		}
		return nil, err
	}

	return nil, ErrImageNotFound
}

// getMusicBrainzReleaseIDs uses the MusicBrainz API to retrieve a list of
// matching release IDs (mbids) for a particular album from an artist.
func (c *Client) getMusicBrainzReleaseIDs(
	ctx context.Context,
	artist,
	album string,
) ([]string, error) {
	c.Lock()
	defer c.Unlock()

	select {
	case <-c.delayer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer c.delayer.Reset(c.delay)

	mbURL := fmt.Sprintf(musicBrainzReleaseEndpoint, c.musicBrainzAPIHost)
	req, err := http.NewRequest(http.MethodGet, mbURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating MusicBrainz XML API req: %w", err)
	}

	query := req.URL.Query()
	query.Add("query", fmt.Sprintf(musicBrainzReleaseQueryValue, album, artist))
	req.URL.RawQuery = query.Encode()
	req.Header.Set("User-Agent", c.useragent)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req = req.WithContext(ctx)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("MusicBrainz XML API returned HTTP %d", resp.StatusCode)
	}

	root := mbReleaseMetadata{}
	dec := xml.NewDecoder(resp.Body)

	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decoding MusicBrainz XML API response: %w", err)
	}

	var releaseIDs []string
	for _, release := range root.ReleaseList.Releases {
		if release.Score >= c.MinScore {
			releaseIDs = append(releaseIDs, release.ID)
		}
	}

	if len(releaseIDs) < 1 {
		return nil, ErrImageNotFound
	}

	return releaseIDs, nil
}

// The following are structures only used to decode the XML response from the
// MusicBrainz API. And only the stuff we are interested in and nothing more.
type mbReleaseMetadata struct {
	ReleaseList mbReleaseList `xml:"release-list"`
}

type mbReleaseList struct {
	Releases []mbRelease `xml:"release"`
}

type mbRelease struct {
	ID    string `xml:"id,attr"`
	Score int    `xml:"score,attr"`
	Title string `xml:"title"`
}
