// Package spotify implements a small client for the parts of the Spotify
// Web API which the server needs, namely acquiring bearer tokens and
// looking up the cover image set of a single resource.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// apiHost is the host of the Spotify Web API.
const apiHost = "https://api.spotify.com"

// CanonicalImageSize is the one square dimension which is considered "the"
// cover. Spotify returns a handful of resolutions per resource and exactly
// the 640x640 one is kept.
const CanonicalImageSize = 640

// Image is a single entry from an upstream image set.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Resource is the uniform projection of any of the supported resource
// kinds. Whatever the type, the caller always gets a title, a byline and
// the canonical image set.
type Resource struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Title  string  `json:"title"`
	Byline string  `json:"byline"`
	Images []Image `json:"images"`
}

// Client talks to the Spotify Web API. It is stateless apart from the
// token source and safe for concurrent use.
type Client struct {
	apiHost    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient returns a Client which authorises its requests with tokens
// from the given source.
func NewClient(tokens TokenSource) *Client {
	return &Client{
		apiHost:    apiHost,
		tokens:     tokens,
		httpClient: http.DefaultClient,
	}
}

// Fetch looks up the resource with the given type and ID and projects the
// upstream response into the uniform Resource shape. The type dispatch is a
// closed switch over the six supported kinds, anything else fails with
// ErrUnsupportedType.
func (c *Client) Fetch(ctx context.Context, kind, id string) (Resource, error) {
	var (
		res Resource
		err error
	)

	switch kind {
	case "track":
		res, err = c.fetchTrack(ctx, id)
	case "album":
		res, err = c.fetchAlbum(ctx, id)
	case "artist":
		res, err = c.fetchArtist(ctx, id)
	case "playlist":
		res, err = c.fetchPlaylist(ctx, id)
	case "episode":
		res, err = c.fetchEpisode(ctx, id)
	case "show":
		res, err = c.fetchShow(ctx, id)
	default:
		return Resource{}, fmt.Errorf("%w: %s", ErrUnsupportedType, kind)
	}

	if err != nil {
		return Resource{}, err
	}

	res.ID = id
	res.Type = kind
	return res, nil
}

func (c *Client) fetchTrack(ctx context.Context, id string) (Resource, error) {
	var track struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
		Album struct {
			Images []Image `json:"images"`
		} `json:"album"`
	}
	if err := c.apiGet(ctx, "/v1/tracks/"+url.PathEscape(id), &track); err != nil {
		return Resource{}, err
	}

	var artists []string
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	// Tracks have no image set of their own, their parent album does.
	return Resource{
		Title:  track.Name,
		Byline: strings.Join(artists, ", "),
		Images: filterCanonical(track.Album.Images),
	}, nil
}

func (c *Client) fetchAlbum(ctx context.Context, id string) (Resource, error) {
	var album struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
		Images []Image `json:"images"`
	}
	if err := c.apiGet(ctx, "/v1/albums/"+url.PathEscape(id), &album); err != nil {
		return Resource{}, err
	}

	var artists []string
	for _, artist := range album.Artists {
		artists = append(artists, artist.Name)
	}

	return Resource{
		Title:  album.Name,
		Byline: strings.Join(artists, ", "),
		Images: filterCanonical(album.Images),
	}, nil
}

func (c *Client) fetchArtist(ctx context.Context, id string) (Resource, error) {
	var artist struct {
		Name   string  `json:"name"`
		Images []Image `json:"images"`
	}
	if err := c.apiGet(ctx, "/v1/artists/"+url.PathEscape(id), &artist); err != nil {
		return Resource{}, err
	}

	return Resource{
		Title:  artist.Name,
		Byline: "Artist",
		Images: filterCanonical(artist.Images),
	}, nil
}

func (c *Client) fetchPlaylist(ctx context.Context, id string) (Resource, error) {
	var playlist struct {
		Name  string `json:"name"`
		Owner struct {
			DisplayName string `json:"display_name"`
		} `json:"owner"`
		Images []Image `json:"images"`
	}
	if err := c.apiGet(ctx, "/v1/playlists/"+url.PathEscape(id), &playlist); err != nil {
		return Resource{}, err
	}

	byline := "Playlist"
	if playlist.Owner.DisplayName != "" {
		byline = "By " + playlist.Owner.DisplayName
	}

	return Resource{
		Title:  playlist.Name,
		Byline: byline,
		Images: filterCanonical(playlist.Images),
	}, nil
}

func (c *Client) fetchEpisode(ctx context.Context, id string) (Resource, error) {
	var episode struct {
		Name string `json:"name"`
		Show struct {
			Name string `json:"name"`
		} `json:"show"`
		Images []Image `json:"images"`
	}
	if err := c.apiGet(ctx, "/v1/episodes/"+url.PathEscape(id), &episode); err != nil {
		return Resource{}, err
	}

	byline := "Episode"
	if episode.Show.Name != "" {
		byline = "From " + episode.Show.Name
	}

	return Resource{
		Title:  episode.Name,
		Byline: byline,
		Images: filterCanonical(episode.Images),
	}, nil
}

func (c *Client) fetchShow(ctx context.Context, id string) (Resource, error) {
	var show struct {
		Name   string  `json:"name"`
		Images []Image `json:"images"`
	}
	if err := c.apiGet(ctx, "/v1/shows/"+url.PathEscape(id), &show); err != nil {
		return Resource{}, err
	}

	return Resource{
		Title:  show.Name,
		Byline: "Podcast",
		Images: filterCanonical(show.Images),
	}, nil
}

// apiGet performs an authorised GET against the API and decodes the JSON
// response into dst.
func (c *Client) apiGet(ctx context.Context, path string, dst any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiHost+path, nil)
	if err != nil {
		return fmt.Errorf("creating Spotify API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to the Spotify API failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding Spotify API response: %w", err)
	}

	return nil
}

// filterCanonical keeps only the images which are exactly the canonical
// square size. An empty result is perfectly fine, some resources simply
// have no 640x640 rendition.
func filterCanonical(images []Image) []Image {
	var filtered []Image
	for _, img := range images {
		if img.Width == CanonicalImageSize && img.Height == CanonicalImageSize {
			filtered = append(filtered, img)
		}
	}

	return filtered
}
