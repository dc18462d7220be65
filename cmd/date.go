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
	"regexp"
	"strconv"
	"time"

	"github.com/ademuri/hot-100-features/internal/analysis"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// parseYearRangeFromArgs accepts one year ("2020") or an inclusive range
// ("1961 2020"). A reversed range is returned as given.
func parseYearRangeFromArgs(args []string) (start int, end int, err error) {
	switch len(args) {
	case 1:
		start, err = parseYear(args[0])
		end = start

	case 2:
		start, err = parseYear(args[0])
		if err != nil {
			return
		}
		end, err = parseYear(args[1])

	default:
		err = fmt.Errorf("Expected one or two year arguments")
	}
	return
}

func parseYear(ys string) (int, error) {
	if !yearPattern.MatchString(ys) {
		return 0, fmt.Errorf("Invalid format: %q", ys)
	}
	year, err := strconv.Atoi(ys)
	if err != nil {
		return 0, fmt.Errorf("Parsing year: %w", err)
	}
	return year, nil
}

// chartDates returns the canonical chart date of every year in the range.
func chartDates(start int, end int, obs analysis.Observation) []time.Time {
	var dates []time.Time
	for year := start; year <= end; year++ {
		dates = append(dates, obs.Date(year))
	}
	return dates
}
