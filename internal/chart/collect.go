package chart

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Collect fetches the snapshot for each date in order and concatenates them.
// limiter may be nil. The first failure aborts the collection.
func Collect(ctx context.Context, src Source, dates []time.Time, limiter *rate.Limiter) ([]Song, error) {
	songs := make([]Song, 0, len(dates)*MaxEntries)
	err := CollectEach(ctx, src, dates, limiter, func(_ time.Time, snapshot []Song) error {
		songs = append(songs, snapshot...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return songs, nil
}

// CollectEach fetches the snapshot for each date in order and hands it to fn
// before moving on, so snapshots already handled survive a later failure.
func CollectEach(ctx context.Context, src Source, dates []time.Time, limiter *rate.Limiter, fn func(date time.Time, songs []Song) error) error {
	for i, date := range dates {
		if limiter != nil && i > 0 {
			if err := limiter.Wait(ctx); err != nil {
				return fmt.Errorf("collect: %w", err)
			}
		}
		snapshot, err := src.Chart(ctx, date)
		if err != nil {
			return fmt.Errorf("collect %s: %w", date.Format(DateFormat), err)
		}
		if err := fn(date, snapshot); err != nil {
			return fmt.Errorf("collect %s: %w", date.Format(DateFormat), err)
		}
	}
	return nil
}
