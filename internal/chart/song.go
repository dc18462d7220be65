// Package chart collects weekly chart snapshots and prepares artist credits
// for catalog search.
package chart

import (
	"context"
	"time"
)

// MaxEntries is the length of a full Hot 100 snapshot.
const MaxEntries = 100

// Song is one entry of a chart snapshot.
type Song struct {
	Date     time.Time
	Position int
	Title    string
	Artist   string
}

// Source returns the ordered chart snapshot observed on a date.
type Source interface {
	Chart(ctx context.Context, date time.Time) ([]Song, error)
}

// DateFormat is the layout used for chart dates in URLs and storage.
const DateFormat = "2006-01-02"
