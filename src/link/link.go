// Package link deals with recognising the different ways in which users
// paste Spotify references. It turns free-form input into a typed
// reference without any network access.
//
// Note that the package does not check whether the resource type itself is
// one which the rest of the program supports. A syntactically well-formed
// reference with an unknown type (say "genre") is passed through and
// rejected later during the actual lookup. This keeps "I don't recognise
// this text" and "I recognise it but cannot look it up" as two distinct
// conditions.
package link

import (
	"net/url"
	"regexp"
	"strings"
)

// Ref is a parsed reference to a single Spotify resource.
type Ref struct {
	// Type is the resource type segment, normalised to lower case.
	Type string

	// ID is the Spotify ID of the resource exactly as it appeared in the
	// input, with any query string stripped.
	ID string
}

// uriPattern matches the compact "spotify:type:id" form. The type segment is
// matched case insensitively and normalised later.
var uriPattern = regexp.MustCompile(`^spotify:([a-zA-Z_]+):([a-zA-Z0-9]+)$`)

// Parse tries to recognise input as a Spotify reference. The second return
// value is false when the input matches none of the known forms. That is
// not an error, merely unrecognised input.
func Parse(input string) (Ref, bool) {
	attempts := []func(string) (Ref, bool){
		parseURI,
		parseURL,
	}

	for _, attempt := range attempts {
		if ref, ok := attempt(input); ok {
			return ref, true
		}
	}

	return Ref{}, false
}

// parseURI recognises the compact URI form, e.g.
// "spotify:track:3AJwUDP919kvQ9QcozQPxg".
func parseURI(input string) (Ref, bool) {
	m := uriPattern.FindStringSubmatch(input)
	if m == nil {
		return Ref{}, false
	}

	return Ref{
		Type: strings.ToLower(m[1]),
		ID:   m[2],
	}, true
}

// parseURL recognises open.spotify.com style links, e.g.
// "https://open.spotify.com/album/1klALx0u4AavZNEvC4LrTL?si=abcd". Any host
// from the Spotify domain family is accepted.
func parseURL(input string) (Ref, bool) {
	parsed, err := url.Parse(input)
	if err != nil {
		return Ref{}, false
	}

	if !strings.Contains(strings.ToLower(parsed.Host), "spotify") {
		return Ref{}, false
	}

	var segments []string
	for _, seg := range strings.Split(parsed.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	if len(segments) < 2 {
		return Ref{}, false
	}

	// The query normally ends up in parsed.RawQuery but pasted links are
	// occasionally mangled so the id segment is stripped once more.
	id, _, _ := strings.Cut(segments[1], "?")
	if id == "" {
		return Ref{}, false
	}

	return Ref{
		Type: strings.ToLower(segments[0]),
		ID:   id,
	}, true
}
