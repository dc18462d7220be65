package analysis

// UnknownKey is the key code of the bucket holding every code outside 0-11,
// including the catalog's "no key detected".
const UnknownKey = -1

// KeyNames maps key codes 0-11 to pitch class names.
var KeyNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// UnknownKeyName labels the UnknownKey bucket.
const UnknownKeyName = "Unknown"

// KeyName returns the pitch class for code, or UnknownKeyName.
func KeyName(code int) string {
	if code < 0 || code >= len(KeyNames) {
		return UnknownKeyName
	}
	return KeyNames[code]
}

func keyBucket(code int) int {
	if code < 0 || code >= len(KeyNames) {
		return len(KeyNames)
	}
	return code
}

// KeyProportions counts the songs in each key for every year from yearStart
// to yearEnd, using the same canonical dates as AverageByDate. Output is
// ordered by year, then key code, with the unknown bucket last. Years and
// keys with no songs produce no rows.
func KeyProportions(yearStart, yearEnd int, table *Table) ([]KeyProportion, error) {
	if yearEnd < yearStart {
		return []KeyProportion{}, nil
	}
	table, err := checkTable(table)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]*[len(KeyNames) + 1]int)
	for _, row := range table.Rows {
		year, ok := table.observedYear(row, yearStart, yearEnd)
		if !ok {
			continue
		}
		c := counts[year]
		if c == nil {
			c = new([len(KeyNames) + 1]int)
			counts[year] = c
		}
		c[keyBucket(row.Key)]++
	}

	proportions := []KeyProportion{}
	for _, year := range sortedYears(counts) {
		total := 0
		for _, count := range counts[year] {
			total += count
		}
		date := table.Observation.Date(year)
		for bucket, count := range counts[year] {
			if count == 0 {
				continue
			}
			code := bucket
			if bucket == len(KeyNames) {
				code = UnknownKey
			}
			proportions = append(proportions, KeyProportion{
				Date:       date,
				Key:        KeyName(code),
				KeyCode:    code,
				Count:      count,
				Proportion: float64(count) / float64(total),
			})
		}
	}
	return proportions, nil
}
