// Package catalog resolves chart entries to Spotify track IDs and fetches
// their audio features.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	defaultRetryAttempts = 10
	defaultRetryDelay    = time.Second
)

// ErrMissingCredentials is returned when the client ID or secret is empty.
var ErrMissingCredentials = errors.New("missing Spotify client ID or client secret")

// Credentials identify the application to the Spotify accounts service.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Options tune request pacing and retries. Zero values use the defaults.
type Options struct {
	RetryAttempts uint
	RetryDelay    time.Duration
	// Limiter paces every catalog request. Nil disables pacing.
	Limiter *rate.Limiter
	Logger  zerolog.Logger
}

// Session is an authenticated catalog client. It is built once and shared by
// every search and feature request of a run.
type Session struct {
	client  *spotify.Client
	limiter *rate.Limiter
	log     zerolog.Logger

	retryAttempts uint
	retryDelay    time.Duration
}

// NewSession authenticates with the client-credentials flow. The returned
// session refreshes its token as needed.
func NewSession(ctx context.Context, creds Credentials, opts Options) (*Session, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	if _, err := config.Token(ctx); err != nil {
		return nil, fmt.Errorf("catalog: requesting token: %w", err)
	}

	return NewSessionWithClient(spotify.New(config.Client(ctx)), opts), nil
}

// NewSessionWithClient wraps an existing client, e.g. one pointed at a test
// server with spotify.WithBaseURL.
func NewSessionWithClient(client *spotify.Client, opts Options) *Session {
	s := &Session{
		client:        client,
		limiter:       opts.Limiter,
		log:           opts.Logger,
		retryAttempts: opts.RetryAttempts,
		retryDelay:    opts.RetryDelay,
	}
	if s.retryAttempts == 0 {
		s.retryAttempts = defaultRetryAttempts
	}
	if s.retryDelay <= 0 {
		s.retryDelay = defaultRetryDelay
	}
	return s
}

func (s *Session) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// statusOf extracts the HTTP status from a catalog error, or 0.
func statusOf(err error) int {
	var serr spotify.Error
	if errors.As(err, &serr) {
		return serr.Status
	}
	var perr *spotify.Error
	if errors.As(err, &perr) {
		return perr.Status
	}
	return 0
}
