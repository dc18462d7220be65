// Package analysis turns the joined chart and audio-feature table into
// per-year summary statistics.
package analysis

import (
	"fmt"
	"time"
)

// Observation is the month and day that stands for a whole year. The zero
// value means June 1.
type Observation struct {
	Month time.Month
	Day   int
}

// DefaultObservation is the canonical chart date of every dataset unless
// configured otherwise.
var DefaultObservation = Observation{Month: time.June, Day: 1}

// Date returns the canonical date for year at UTC midnight.
func (o Observation) Date(year int) time.Time {
	o = o.orDefault()
	return time.Date(year, o.Month, o.Day, 0, 0, 0, 0, time.UTC)
}

func (o Observation) orDefault() Observation {
	if o.Month == 0 && o.Day == 0 {
		return DefaultObservation
	}
	return o
}

// Validate checks that o names a day that exists in every year, so Date
// never rolls over into the next month. The zero value is valid.
func (o Observation) Validate() error {
	if o.Month == 0 && o.Day == 0 {
		return nil
	}
	if o.Month < time.January || o.Month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidObservation, int(o.Month))
	}
	// 2001 is not a leap year, so February 29 is rejected.
	days := time.Date(2001, o.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if o.Day < 1 || o.Day > days {
		return fmt.Errorf("%w: %s has no day %d", ErrInvalidObservation, o.Month, o.Day)
	}
	return nil
}

// Row is one chart entry with its audio features.
type Row struct {
	Date     time.Time
	Title    string
	Artist   string
	TrackID  string
	Key      int
	Features map[string]float64
}

// Table is the song and feature table the aggregations read. It is never
// modified by this package.
type Table struct {
	Observation Observation
	Rows        []Row
}

// YearlyAverage is the mean of one feature over one year's chart.
type YearlyAverage struct {
	Date    time.Time `yaml:"date"`
	Feature string    `yaml:"feature"`
	Average float64   `yaml:"average"`
}

// KeyProportion is how many of one year's songs are in one key.
type KeyProportion struct {
	Date       time.Time `yaml:"date"`
	Key        string    `yaml:"key"`
	KeyCode    int       `yaml:"key_code"`
	Count      int       `yaml:"count"`
	Proportion float64   `yaml:"proportion"`
}

// Report is the top-level structure of the yearly summary report.
type Report struct {
	Metadata ReportMetadata  `yaml:"metadata"`
	Averages []YearlyAverage `yaml:"averages"`
	Keys     []KeyProportion `yaml:"keys"`
}

type ReportMetadata struct {
	GeneratedDate string   `yaml:"generated_date"`
	YearStart     int      `yaml:"year_start"`
	YearEnd       int      `yaml:"year_end"`
	Observation   string   `yaml:"observation"`
	Songs         int      `yaml:"songs"`
	Features      []string `yaml:"features"`
}
