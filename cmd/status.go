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
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows how much of the database has been collected and matched",
	Run: func(cmd *cobra.Command, args []string) {
		if err := printStatus(cmd.OutOrStdout(), viper.GetString("database")); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printStatus(out io.Writer, dbPath string) error {
	db, err := openExistingStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.GetCounts()
	if err != nil {
		return err
	}

	a := Analysis{results: [][]string{
		{"", "Count"},
		{"Charts", strconv.Itoa(counts.Charts)},
		{"Entries", strconv.Itoa(counts.Entries)},
		{"Pending", strconv.Itoa(counts.Pending)},
		{"Matched", strconv.Itoa(counts.Matched)},
		{"Not found", strconv.Itoa(counts.NotFound)},
		{"With features", strconv.Itoa(counts.WithFeature)},
	}}
	a.summary = fmt.Sprintf("Database: %s", dbPath)
	return a.Render(out)
}
