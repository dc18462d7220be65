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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/hot-100-features/internal/analysis"
	"github.com/ademuri/hot-100-features/internal/catalog"
)

var averagesFeatures []string

var averagesCmd = &cobra.Command{
	Use:   "averages [from] [to (optional)]",
	Short: "Prints the yearly average of each audio feature",
	Long:  `Uses the specified year or inclusive year range. Every year in the range must have chart data.`,
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		obs, err := observationFromConfig()
		if err == nil {
			err = printAverages(cmd.OutOrStdout(), viper.GetString("database"), obs, averagesFeatures, args)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(averagesCmd)

	averagesCmd.Flags().StringSliceVarP(&averagesFeatures, "features", "f", catalog.FeatureNames, "audio features to average")
}

func printAverages(out io.Writer, dbPath string, obs analysis.Observation, features []string, args []string) error {
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
	return averagesAnalysis(features, averages).Render(out)
}
