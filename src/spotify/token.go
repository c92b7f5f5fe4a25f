package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// accountsTokenURL is the Spotify endpoint for the client-credentials grant.
const accountsTokenURL = "https://accounts.spotify.com/api/token"

// tokenExpiryMargin is subtracted from the upstream-declared token lifetime
// so that a token which is about to expire is never handed to a request
// which would then race against the clock.
const tokenExpiryMargin = 30 * time.Second

// defaultTokenLifetime is used when the token endpoint response does not
// declare an expires_in value.
const defaultTokenLifetime = 3600 * time.Second

// TokenSource is anything which can produce a valid Spotify bearer token.
type TokenSource interface {
	// Token returns a token which is guaranteed to be accepted by the API
	// for at least a short while after the call.
	Token(ctx context.Context) (string, error)
}

// CredsTokenSource is a TokenSource which acquires bearer tokens with the
// client-credentials grant and caches them for their declared lifetime.
// Refreshing is lazy, there is no background refresh goroutine. Concurrent
// requests which observe an expired token share a single in-flight exchange
// instead of each making their own. It is safe for concurrent use.
type CredsTokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string

	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	value     string
	expiresAt time.Time

	refreshes singleflight.Group
}

// NewCredsTokenSource returns a token source for the given client
// credentials. The credentials may be empty, in which case every Token call
// fails with ErrNoCredentials.
func NewCredsTokenSource(clientID, clientSecret string) *CredsTokenSource {
	return &CredsTokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     accountsTokenURL,
		httpClient:   http.DefaultClient,
		now:          time.Now,
	}
}

// Token implements TokenSource. It returns the cached token while it is
// still comfortably within its validity window and performs the credentials
// exchange otherwise.
func (s *CredsTokenSource) Token(ctx context.Context) (string, error) {
	if s.clientID == "" || s.clientSecret == "" {
		return "", ErrNoCredentials
	}

	if tok, ok := s.cached(); ok {
		return tok, nil
	}

	tok, err, _ := s.refreshes.Do("token", func() (any, error) {
		// Another waiter may have finished the refresh just before this
		// one got to run.
		if tok, ok := s.cached(); ok {
			return tok, nil
		}

		return s.exchange(ctx)
	})
	if err != nil {
		return "", err
	}

	return tok.(string), nil
}

// cached returns the stored token provided its expiry, less the safety
// margin, is still in the future.
func (s *CredsTokenSource) cached() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.value == "" || !s.now().Before(s.expiresAt.Add(-tokenExpiryMargin)) {
		return "", false
	}

	return s.value, true
}

// exchange performs the actual client-credentials grant against the token
// endpoint and replaces the cached token wholesale on success.
func (s *CredsTokenSource) exchange(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", fmt.Errorf("creating token exchange request: %w", err)
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token exchange rejected: %w", &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&grant); err != nil {
		return "", fmt.Errorf("decoding token endpoint response: %w", err)
	}
	if grant.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty access token")
	}

	lifetime := defaultTokenLifetime
	if grant.ExpiresIn > 0 {
		lifetime = time.Duration(grant.ExpiresIn) * time.Second
	}

	s.mu.Lock()
	s.value = grant.AccessToken
	s.expiresAt = s.now().Add(lifetime)
	s.mu.Unlock()

	return grant.AccessToken, nil
}
