package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ademuri/hot-100-features/internal/chart"
)

// TrackSearcher looks up a track ID by title and normalized artist.
type TrackSearcher interface {
	SearchTrack(ctx context.Context, title string, artist string) (string, error)
}

var _ TrackSearcher = (*Session)(nil)

// ResolvedSong is a chart entry with its catalog track ID.
type ResolvedSong struct {
	chart.Song
	TrackID string
}

// Resolver maps chart entries to catalog track IDs.
type Resolver struct {
	Searcher TrackSearcher
	Log      zerolog.Logger
	// OnResult, if set, is called after each song is looked up. trackID is
	// empty when the catalog had no match.
	OnResult func(song chart.Song, trackID string) error
}

// Resolve looks up every song. Songs without a match are left out of the
// result; the number skipped is returned alongside.
func (r *Resolver) Resolve(ctx context.Context, songs []chart.Song) ([]ResolvedSong, int, error) {
	resolved := make([]ResolvedSong, 0, len(songs))
	notFound := 0
	for i, song := range songs {
		id, err := r.Searcher.SearchTrack(ctx, song.Title, chart.NormalizeArtist(song.Artist))
		switch {
		case errors.Is(err, ErrNotFound):
			notFound++
			r.Log.Debug().
				Str("title", song.Title).
				Str("artist", song.Artist).
				Msg("no catalog match")
		case err != nil:
			return nil, notFound, fmt.Errorf("resolving %q by %q: %w", song.Title, song.Artist, err)
		default:
			resolved = append(resolved, ResolvedSong{Song: song, TrackID: id})
		}

		if r.OnResult != nil {
			if err := r.OnResult(song, id); err != nil {
				return nil, notFound, err
			}
		}

		if (i+1)%100 == 0 {
			r.Log.Info().Int("done", i+1).Int("total", len(songs)).Msg("resolving tracks")
		}
	}
	return resolved, notFound, nil
}
