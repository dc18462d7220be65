package store

import (
	"fmt"
	"time"

	"github.com/ademuri/hot-100-features/internal/chart"
)

const (
	StatusPending  = "pending"
	StatusMatched  = "matched"
	StatusNotFound = "not_found"
)

// FeatureImport is one track's audio features, ready to store.
type FeatureImport struct {
	TrackID string
	Key     int
	Values  map[string]float64
}

// SaveChart replaces the snapshot stored for date. Replaced entries go back
// to pending resolution.
func (s *Store) SaveChart(date time.Time, songs []chart.Song) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	day := date.Format(chart.DateFormat)
	if _, err := tx.Exec("DELETE FROM ChartEntry WHERE date = ?", day); err != nil {
		return fmt.Errorf("clearing chart %s: %w", day, err)
	}

	for _, song := range songs {
		_, err := tx.Exec(
			"INSERT INTO ChartEntry (date, position, title, artist, status) VALUES (?, ?, ?, ?, ?)",
			day, song.Position, song.Title, song.Artist, StatusPending)
		if err != nil {
			return fmt.Errorf("inserting %q at %s #%d: %w", song.Title, day, song.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SetTrackID records a catalog match for a chart entry.
func (s *Store) SetTrackID(date time.Time, position int, trackID string) error {
	return s.setResolution(date, position, trackID, StatusMatched)
}

// MarkNotFound records that the catalog had no match for a chart entry.
func (s *Store) MarkNotFound(date time.Time, position int) error {
	return s.setResolution(date, position, "", StatusNotFound)
}

func (s *Store) setResolution(date time.Time, position int, trackID string, status string) error {
	day := date.Format(chart.DateFormat)
	var id interface{}
	if trackID != "" {
		id = trackID
	}
	res, err := s.db.Exec(
		"UPDATE ChartEntry SET track_id = ?, status = ?, resolved_at = ? WHERE date = ? AND position = ?",
		id, status, time.Now(), day, position)
	if err != nil {
		return fmt.Errorf("updating %s #%d: %w", day, position, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s #%d: %w", day, position, err)
	}
	if n == 0 {
		return fmt.Errorf("no chart entry %s #%d", day, position)
	}
	return nil
}

// SaveFeatures stores a batch of audio features transactionally.
func (s *Store) SaveFeatures(features []FeatureImport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, f := range features {
		_, err := tx.Exec("INSERT OR REPLACE INTO AudioFeature (track_id, key, fetched_at) VALUES (?, ?, ?)", f.TrackID, f.Key, now)
		if err != nil {
			return fmt.Errorf("inserting features for %q: %w", f.TrackID, err)
		}
		if _, err := tx.Exec("DELETE FROM FeatureValue WHERE track_id = ?", f.TrackID); err != nil {
			return fmt.Errorf("clearing features for %q: %w", f.TrackID, err)
		}
		for name, value := range f.Values {
			_, err := tx.Exec("INSERT INTO FeatureValue (track_id, name, value) VALUES (?, ?, ?)", f.TrackID, name, value)
			if err != nil {
				return fmt.Errorf("inserting %s for %q: %w", name, f.TrackID, err)
			}
		}
		if _, err := tx.Exec("DELETE FROM MissingFeature WHERE track_id = ?", f.TrackID); err != nil {
			return fmt.Errorf("clearing missing marker for %q: %w", f.TrackID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// MarkFeaturesMissing records tracks the catalog has no features for, so they
// are not requested again on every run.
func (s *Store) MarkFeaturesMissing(trackIDs []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, id := range trackIDs {
		if _, err := tx.Exec("INSERT OR REPLACE INTO MissingFeature (track_id, checked_at) VALUES (?, ?)", id, now); err != nil {
			return fmt.Errorf("marking %q: %w", id, err)
		}
	}

	return tx.Commit()
}
