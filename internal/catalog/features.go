package catalog

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// MaxBatchSize is the most IDs the audio-features endpoint accepts at once.
const MaxBatchSize = 100

// NoKey is the key code the catalog reports when no key was detected.
const NoKey = -1

// FeatureNames lists the numeric features stored for every track, in the
// order they are reported.
var FeatureNames = []string{
	"danceability",
	"energy",
	"loudness",
	"mode",
	"speechiness",
	"acousticness",
	"instrumentalness",
	"liveness",
	"valence",
	"tempo",
	"duration_ms",
	"time_signature",
}

// Features are the audio features of one track.
type Features struct {
	TrackID string
	Key     int
	Values  map[string]float64
}

// BatchResult is the outcome of fetching features for a list of IDs.
type BatchResult struct {
	Features []Features
	// Missing lists requested IDs the catalog had no features for.
	Missing []string
}

// AudioFeatures fetches features for ids in batches of MaxBatchSize. Every
// response must line up with its request batch, both in length and in the
// track ID at each position; anything else is an error.
func (s *Session) AudioFeatures(ctx context.Context, ids []string) (BatchResult, error) {
	var result BatchResult
	for start := 0; start < len(ids); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(ids))
		batch := ids[start:end]

		spotifyIDs := make([]spotify.ID, len(batch))
		for i, id := range batch {
			spotifyIDs[i] = spotify.ID(id)
		}

		var records []*spotify.AudioFeatures
		err := s.do(ctx, "audio-features", func() error {
			var err error
			records, err = s.client.GetAudioFeatures(ctx, spotifyIDs...)
			return err
		})
		if err != nil {
			return BatchResult{}, fmt.Errorf("catalog: fetching features for batch at %d: %w", start, err)
		}

		features, missing, err := joinBatch(batch, records)
		if err != nil {
			return BatchResult{}, fmt.Errorf("catalog: batch at %d: %w", start, err)
		}
		result.Features = append(result.Features, features...)
		result.Missing = append(result.Missing, missing...)

		s.log.Debug().
			Int("batch_start", start).
			Int("batch_size", len(batch)).
			Int("missing", len(missing)).
			Msg("fetched audio features")
	}
	return result, nil
}

func joinBatch(ids []string, records []*spotify.AudioFeatures) ([]Features, []string, error) {
	if len(records) != len(ids) {
		return nil, nil, fmt.Errorf("requested %d tracks, got %d feature records", len(ids), len(records))
	}

	features := make([]Features, 0, len(ids))
	var missing []string
	for i, record := range records {
		if record == nil {
			missing = append(missing, ids[i])
			continue
		}
		if string(record.ID) != ids[i] {
			return nil, nil, fmt.Errorf("position %d: requested track %q, got features for %q", i, ids[i], record.ID)
		}
		features = append(features, toFeatures(record))
	}
	return features, missing, nil
}

func toFeatures(af *spotify.AudioFeatures) Features {
	return Features{
		TrackID: string(af.ID),
		Key:     int(af.Key),
		Values: map[string]float64{
			"danceability":     float64(af.Danceability),
			"energy":           float64(af.Energy),
			"loudness":         float64(af.Loudness),
			"mode":             float64(af.Mode),
			"speechiness":      float64(af.Speechiness),
			"acousticness":     float64(af.Acousticness),
			"instrumentalness": float64(af.Instrumentalness),
			"liveness":         float64(af.Liveness),
			"valence":          float64(af.Valence),
			"tempo":            float64(af.Tempo),
			"duration_ms":      float64(af.Duration),
			"time_signature":   float64(af.TimeSignature),
		},
	}
}
