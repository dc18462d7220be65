package store

import (
	"fmt"
	"time"

	"github.com/ademuri/hot-100-features/internal/chart"
)

// SongFeatures is a matched chart entry joined with its track's features.
type SongFeatures struct {
	Date     time.Time
	Position int
	Title    string
	Artist   string
	TrackID  string
	Key      int
	Features map[string]float64
}

// Counts summarizes what the database holds.
type Counts struct {
	Charts      int
	Entries     int
	Pending     int
	Matched     int
	NotFound    int
	WithFeature int
}

func (s *Store) HasChart(date time.Time) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM ChartEntry WHERE date = ?", date.Format(chart.DateFormat)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking chart %s: %w", date.Format(chart.DateFormat), err)
	}
	return count > 0, nil
}

// GetPendingSongs returns chart entries that have not been looked up yet,
// ordered by date then position.
func (s *Store) GetPendingSongs() ([]chart.Song, error) {
	rows, err := s.db.Query(
		"SELECT date, position, title, artist FROM ChartEntry WHERE status = ? ORDER BY date, position",
		StatusPending)
	if err != nil {
		return nil, fmt.Errorf("querying pending songs: %w", err)
	}
	defer rows.Close()

	var songs []chart.Song
	for rows.Next() {
		var song chart.Song
		var day string
		if err := rows.Scan(&day, &song.Position, &song.Title, &song.Artist); err != nil {
			return nil, err
		}
		song.Date, err = parseDay(day)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// GetTrackIDsMissingFeatures returns matched track IDs with no stored
// features that have not already been reported missing by the catalog.
func (s *Store) GetTrackIDsMissingFeatures() ([]string, error) {
	query := `
		SELECT DISTINCT c.track_id
		FROM ChartEntry c
		LEFT JOIN AudioFeature a ON a.track_id = c.track_id
		LEFT JOIN MissingFeature m ON m.track_id = c.track_id
		WHERE c.status = ? AND a.track_id IS NULL AND m.track_id IS NULL
		ORDER BY c.track_id
	`
	rows, err := s.db.Query(query, StatusMatched)
	if err != nil {
		return nil, fmt.Errorf("querying tracks missing features: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetSongFeatures returns every matched chart entry that has features,
// ordered by date then position. A track charting on several dates appears
// once per date.
func (s *Store) GetSongFeatures() ([]SongFeatures, error) {
	query := `
		SELECT c.date, c.position, c.title, c.artist, c.track_id, a.key
		FROM ChartEntry c
		JOIN AudioFeature a ON a.track_id = c.track_id
		WHERE c.status = ?
		ORDER BY c.date, c.position
	`
	rows, err := s.db.Query(query, StatusMatched)
	if err != nil {
		return nil, fmt.Errorf("querying song features: %w", err)
	}
	defer rows.Close()

	var songs []SongFeatures
	for rows.Next() {
		var sf SongFeatures
		var day string
		if err := rows.Scan(&day, &sf.Position, &sf.Title, &sf.Artist, &sf.TrackID, &sf.Key); err != nil {
			return nil, err
		}
		sf.Date, err = parseDay(day)
		if err != nil {
			return nil, err
		}
		songs = append(songs, sf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	values, err := s.featureValues()
	if err != nil {
		return nil, err
	}
	for i := range songs {
		songs[i].Features = values[songs[i].TrackID]
	}
	return songs, nil
}

func (s *Store) featureValues() (map[string]map[string]float64, error) {
	rows, err := s.db.Query("SELECT track_id, name, value FROM FeatureValue")
	if err != nil {
		return nil, fmt.Errorf("querying feature values: %w", err)
	}
	defer rows.Close()

	values := make(map[string]map[string]float64)
	for rows.Next() {
		var id, name string
		var value float64
		if err := rows.Scan(&id, &name, &value); err != nil {
			return nil, err
		}
		if values[id] == nil {
			values[id] = make(map[string]float64)
		}
		values[id][name] = value
	}
	return values, rows.Err()
}

func (s *Store) GetCounts() (Counts, error) {
	var c Counts
	query := `
		SELECT
			COUNT(DISTINCT date),
			COUNT(*),
			COALESCE(SUM(status = 'pending'), 0),
			COALESCE(SUM(status = 'matched'), 0),
			COALESCE(SUM(status = 'not_found'), 0),
			COALESCE(SUM(track_id IN (SELECT track_id FROM AudioFeature)), 0)
		FROM ChartEntry
	`
	err := s.db.QueryRow(query).Scan(&c.Charts, &c.Entries, &c.Pending, &c.Matched, &c.NotFound, &c.WithFeature)
	if err != nil {
		return Counts{}, fmt.Errorf("counting entries: %w", err)
	}
	return c, nil
}

func parseDay(day string) (time.Time, error) {
	t, err := time.Parse(chart.DateFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", day, err)
	}
	return t, nil
}
