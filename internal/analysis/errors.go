package analysis

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoData means a requested year has no observations to average.
	ErrNoData = errors.New("no data for year")

	// ErrMissingFeature means a row lacks the feature being averaged.
	ErrMissingFeature = errors.New("feature missing from row")

	// ErrInvalidObservation means the canonical month and day do not name a
	// day that exists in every year.
	ErrInvalidObservation = errors.New("invalid observation date")
)

// NoDataError names the year and feature that had nothing to average.
type NoDataError struct {
	Date    time.Time
	Feature string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data for %s on %s", e.Feature, e.Date.Format("2006-01-02"))
}

func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// MissingFeatureError names the row that lacks a feature.
type MissingFeatureError struct {
	Date    time.Time
	TrackID string
	Feature string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("track %q on %s has no %q feature", e.TrackID, e.Date.Format("2006-01-02"), e.Feature)
}

func (e *MissingFeatureError) Is(target error) bool {
	return target == ErrMissingFeature
}
