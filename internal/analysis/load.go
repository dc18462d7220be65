package analysis

import (
	"fmt"

	"github.com/ademuri/hot-100-features/internal/store"
)

// LoadTable reads every matched chart entry that has audio features.
func LoadTable(db *store.Store, obs Observation) (*Table, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}

	songs, err := db.GetSongFeatures()
	if err != nil {
		return nil, fmt.Errorf("loading song features: %w", err)
	}

	rows := make([]Row, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, Row{
			Date:     s.Date,
			Title:    s.Title,
			Artist:   s.Artist,
			TrackID:  s.TrackID,
			Key:      s.Key,
			Features: s.Features,
		})
	}
	return &Table{Observation: obs.orDefault(), Rows: rows}, nil
}
