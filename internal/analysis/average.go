package analysis

type yearSum struct {
	total float64
	count int
}

// AverageByDate returns the mean of feature for every year from yearStart to
// yearEnd inclusive, in ascending order. Only rows dated on a year's
// canonical date count toward that year. A year with no such rows is an
// error; no partial result is returned.
func AverageByDate(yearStart, yearEnd int, feature string, table *Table) ([]YearlyAverage, error) {
	if yearEnd < yearStart {
		return []YearlyAverage{}, nil
	}
	table, err := checkTable(table)
	if err != nil {
		return nil, err
	}

	sums := make(map[int]*yearSum)
	for _, row := range table.Rows {
		year, ok := table.observedYear(row, yearStart, yearEnd)
		if !ok {
			continue
		}
		value, ok := row.Features[feature]
		if !ok {
			return nil, &MissingFeatureError{Date: row.Date, TrackID: row.TrackID, Feature: feature}
		}
		s := sums[year]
		if s == nil {
			s = &yearSum{}
			sums[year] = s
		}
		s.total += value
		s.count++
	}

	// Every year needs data, so the range can be no longer than the years
	// seen. Walking it stops at the first gap.
	averages := make([]YearlyAverage, 0, len(sums))
	for year := yearStart; ; year++ {
		s := sums[year]
		if s == nil {
			return nil, &NoDataError{Date: table.Observation.Date(year), Feature: feature}
		}
		averages = append(averages, YearlyAverage{
			Date:    table.Observation.Date(year),
			Feature: feature,
			Average: s.total / float64(s.count),
		})
		if year == yearEnd {
			break
		}
	}
	return averages, nil
}

// AverageAll runs AverageByDate for each feature in order and concatenates
// the results: every year of the first feature, then every year of the next.
func AverageAll(yearStart, yearEnd int, features []string, table *Table) ([]YearlyAverage, error) {
	var all []YearlyAverage
	for _, feature := range features {
		averages, err := AverageByDate(yearStart, yearEnd, feature, table)
		if err != nil {
			return nil, err
		}
		all = append(all, averages...)
	}
	if all == nil {
		return []YearlyAverage{}, nil
	}
	return all, nil
}
