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
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/hot-100-features/internal/analysis"
	"github.com/ademuri/hot-100-features/internal/catalog"
)

var reportFeatures []string

var reportCmd = &cobra.Command{
	Use:   "report [from] [to (optional)]",
	Short: "Generates a YAML report of yearly feature averages and keys",
	Long:  `Summarizes the stored charts over the year range as YAML on stdout.`,
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		obs, err := observationFromConfig()
		if err == nil {
			err = runReport(cmd.OutOrStdout(), viper.GetString("database"), obs, reportFeatures, args, time.Now())
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringSliceVarP(&reportFeatures, "features", "f", catalog.FeatureNames, "audio features to average")
}

func runReport(out io.Writer, dbPath string, obs analysis.Observation, features []string, args []string, now time.Time) error {
	start, end, err := parseYearRangeFromArgs(args)
	if err != nil {
		return err
	}

	table, err := loadTable(dbPath, obs)
	if err != nil {
		return err
	}

	report, err := analysis.Summarize(start, end, features, table, now)
	if err != nil {
		return fmt.Errorf("analyzing data: %w", err)
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return encoder.Close()
}
