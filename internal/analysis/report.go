package analysis

import (
	"fmt"
	"time"
)

// Summarize builds the yearly report: feature averages followed by the key
// distribution, over the same year range.
func Summarize(yearStart, yearEnd int, features []string, table *Table, now time.Time) (*Report, error) {
	table, err := checkTable(table)
	if err != nil {
		return nil, err
	}

	averages, err := AverageAll(yearStart, yearEnd, features, table)
	if err != nil {
		return nil, fmt.Errorf("averaging features: %w", err)
	}

	keys, err := KeyProportions(yearStart, yearEnd, table)
	if err != nil {
		return nil, fmt.Errorf("counting keys: %w", err)
	}

	obs := table.Observation.orDefault()
	songs := 0
	for _, row := range table.Rows {
		if _, ok := table.observedYear(row, yearStart, yearEnd); ok {
			songs++
		}
	}

	return &Report{
		Metadata: ReportMetadata{
			GeneratedDate: now.Format("2006-01-02"),
			YearStart:     yearStart,
			YearEnd:       yearEnd,
			Observation:   fmt.Sprintf("%s %d", obs.Month, obs.Day),
			Songs:         songs,
			Features:      features,
		},
		Averages: averages,
		Keys:     keys,
	}, nil
}
