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
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/hot-100-features/internal/analysis"
	"github.com/ademuri/hot-100-features/internal/catalog"
	"github.com/ademuri/hot-100-features/internal/chart"
)

var exportFeatures []string
var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export [from] [to (optional)]",
	Short: "Writes the yearly averages and key distribution as CSV",
	Long:  `Creates averages.csv and keys.csv in the output directory, replacing any existing files.`,
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		obs, err := observationFromConfig()
		if err == nil {
			err = exportCSV(exportDir, viper.GetString("database"), obs, exportFeatures, args)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringSliceVarP(&exportFeatures, "features", "f", catalog.FeatureNames, "audio features to average")
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "directory to write the CSV files to")
}

func exportCSV(dir string, dbPath string, obs analysis.Observation, features []string, args []string) error {
	start, end, err := parseYearRangeFromArgs(args)
	if err != nil {
		return err
	}

	table, err := loadTable(dbPath, obs)
	if err != nil {
		return err
	}

	averages, err := analysis.AverageAll(start, end, features, table)
	if err != nil {
		return fmt.Errorf("averaging features: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	averageRows := [][]string{{"date", "feature", "average"}}
	for _, a := range averages {
		averageRows = append(averageRows, []string{
			a.Date.Format(chart.DateFormat),
			a.Feature,
			strconv.FormatFloat(a.Average, 'g', -1, 64),
		})
	}
	if err := writeCSV(filepath.Join(dir, "averages.csv"), averageRows); err != nil {
		return err
	}

	proportions, err := analysis.KeyProportions(start, end, table)
	if err != nil {
		return fmt.Errorf("counting keys: %w", err)
	}

	keyRows := [][]string{{"date", "key", "key_code", "count", "proportion"}}
	for _, kp := range proportions {
		keyRows = append(keyRows, []string{
			kp.Date.Format(chart.DateFormat),
			kp.Key,
			strconv.Itoa(kp.KeyCode),
			strconv.Itoa(kp.Count),
			strconv.FormatFloat(kp.Proportion, 'g', -1, 64),
		})
	}
	return writeCSV(filepath.Join(dir, "keys.csv"), keyRows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
