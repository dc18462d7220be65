package analysis

import (
	"sort"
	"time"
)

// observedYear reports the year a row belongs to, and false if the row's date
// is not a canonical date in [yearStart, yearEnd].
func (t *Table) observedYear(row Row, yearStart, yearEnd int) (int, bool) {
	year := row.Date.Year()
	if year < yearStart || year > yearEnd {
		return 0, false
	}
	return year, sameDay(row.Date, t.Observation.Date(year))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// checkTable rejects tables whose observation would roll over. A nil table
// is treated as empty.
func checkTable(table *Table) (*Table, error) {
	if table == nil {
		return &Table{}, nil
	}
	if err := table.Observation.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func sortedYears[V any](byYear map[int]V) []int {
	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
