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
)

var keysCmd = &cobra.Command{
	Use:   "keys [from] [to (optional)]",
	Short: "Prints how the songs of each year are spread across musical keys",
	Long:  `Uses the specified year or inclusive year range. Songs with no detected key are counted as Unknown.`,
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		obs, err := observationFromConfig()
		if err == nil {
			err = printKeys(cmd.OutOrStdout(), viper.GetString("database"), obs, args)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}

func printKeys(out io.Writer, dbPath string, obs analysis.Observation, args []string) error {
	start, end, err := parseYearRangeFromArgs(args)
	if err != nil {
		return err
	}

	table, err := loadTable(dbPath, obs)
	if err != nil {
		return err
	}

	proportions, err := analysis.KeyProportions(start, end, table)
	if err != nil {
		return fmt.Errorf("counting keys: %w", err)
	}
	return keysAnalysis(proportions).Render(out)
}
