package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// ErrNotFound means the keyword search returned no tracks.
var ErrNotFound = errors.New("track not found in catalog")

// NotFoundError records which search came back empty.
type NotFoundError struct {
	Title  string
	Artist string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("no catalog match for title %q artist %q", e.Title, e.Artist)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// SearchTrack returns the ID of the first track matching "title artist".
// The artist should already be normalized.
func (s *Session) SearchTrack(ctx context.Context, title string, artist string) (string, error) {
	query := fmt.Sprintf("%s %s", title, artist)

	var result *spotify.SearchResult
	err := s.do(ctx, "search", func() error {
		var err error
		result, err = s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("catalog: searching %q: %w", query, err)
	}

	if result == nil || result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return "", NotFoundError{Title: title, Artist: artist}
	}
	return string(result.Tracks.Tracks[0].ID), nil
}
