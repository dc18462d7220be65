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
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/hot-100-features/internal/analysis"
	"github.com/ademuri/hot-100-features/internal/store"
)

var cfgFile string
var databasePath string
var clientID string
var clientSecret string
var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hot-100-features",
	Short: "Tracks how the audio features of the Billboard Hot 100 change over time",
	Long: `Collects one Billboard Hot 100 chart per year, matches every song to a
Spotify track, fetches its audio features and summarizes them by year.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.hot-100-features.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./hot100.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringVar(&clientID, "client_id", "", "Spotify client ID")
	viper.BindPFlag("client_id", rootCmd.PersistentFlags().Lookup("client_id"))
	viper.BindEnv("client_id", "SPOTIFY_CLIENT_ID")

	rootCmd.PersistentFlags().StringVar(&clientSecret, "client_secret", "", "Spotify client secret")
	viper.BindPFlag("client_secret", rootCmd.PersistentFlags().Lookup("client_secret"))
	viper.BindEnv("client_secret", "SPOTIFY_CLIENT_SECRET")

	rootCmd.PersistentFlags().Int("month", int(analysis.DefaultObservation.Month), "Month of the chart that stands for each year")
	viper.BindPFlag("month", rootCmd.PersistentFlags().Lookup("month"))

	rootCmd.PersistentFlags().Int("day", analysis.DefaultObservation.Day, "Day of the month of the chart that stands for each year")
	viper.BindPFlag("day", rootCmd.PersistentFlags().Lookup("day"))

	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "info", "Log level: debug, info, warn or error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))

	rootCmd.PersistentFlags().Uint("retry_attempts", 10, "Attempts per Spotify request before giving up")
	viper.BindPFlag("retry_attempts", rootCmd.PersistentFlags().Lookup("retry_attempts"))

	rootCmd.PersistentFlags().Duration("retry_delay", time.Second, "Delay between attempts of a failed Spotify request")
	viper.BindPFlag("retry_delay", rootCmd.PersistentFlags().Lookup("retry_delay"))

	rootCmd.PersistentFlags().Duration("request_interval", time.Second, "Minimum time between requests to Billboard and Spotify")
	viper.BindPFlag("request_interval", rootCmd.PersistentFlags().Lookup("request_interval"))
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	// A missing .env is fine; credentials may come from the shell or the config file.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".hot-100-features" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".hot-100-features")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func setupLogger(level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func observationFromConfig() (analysis.Observation, error) {
	obs := analysis.Observation{Month: time.Month(viper.GetInt("month")), Day: viper.GetInt("day")}
	if err := obs.Validate(); err != nil {
		return analysis.Observation{}, fmt.Errorf("--month/--day: %w", err)
	}
	return obs, nil
}

// openExistingStore opens the database for reading, refusing to create an
// empty one.
func openExistingStore(dbPath string) (*store.Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Database doesn't exist - run update first.")
		}
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func loadTable(dbPath string, obs analysis.Observation) (*analysis.Table, error) {
	db, err := openExistingStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return analysis.LoadTable(db, obs)
}
