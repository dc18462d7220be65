/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/hot-100-features/internal/analysis"
	"github.com/ademuri/hot-100-features/internal/chart"
)

// Analysis is a rendered result: a header row, data rows and a summary line.
type Analysis struct {
	results [][]string
	summary string
}

func (a Analysis) Render(out io.Writer) error {
	table := tablewriter.NewWriter(out)
	table.Header(a.results[0])
	for _, row := range a.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return nil
}

// averagesAnalysis lays the averages out with one row per year and one
// column per feature.
func averagesAnalysis(features []string, averages []analysis.YearlyAverage) Analysis {
	header := append([]string{"Year"}, features...)
	a := Analysis{results: [][]string{header}}

	years := 0
	if len(features) > 0 {
		years = len(averages) / len(features)
	}
	for i := 0; i < years; i++ {
		row := []string{strconv.Itoa(averages[i].Date.Year())}
		for f := range features {
			row = append(row, formatValue(averages[f*years+i].Average))
		}
		a.results = append(a.results, row)
	}

	a.summary = fmt.Sprintf("Averaged %d features over %d years", len(features), years)
	return a
}

func keysAnalysis(proportions []analysis.KeyProportion) Analysis {
	a := Analysis{results: [][]string{{"Date", "Key", "Songs", "Proportion"}}}
	years := map[int]bool{}
	for _, kp := range proportions {
		years[kp.Date.Year()] = true
		a.results = append(a.results, []string{
			kp.Date.Format(chart.DateFormat),
			kp.Key,
			strconv.Itoa(kp.Count),
			formatValue(kp.Proportion),
		})
	}

	a.summary = fmt.Sprintf("Found %d keys across %d years", len(proportions), len(years))
	return a
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
