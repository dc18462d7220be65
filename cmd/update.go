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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/ademuri/hot-100-features/internal/analysis"
	"github.com/ademuri/hot-100-features/internal/catalog"
	"github.com/ademuri/hot-100-features/internal/chart"
	"github.com/ademuri/hot-100-features/internal/store"
)

type UpdateConfig struct {
	DbPath      string
	StartYear   int
	EndYear     int
	Force       bool
	Observation analysis.Observation
}

// featureCatalog is the part of the catalog session the update uses.
type featureCatalog interface {
	catalog.TrackSearcher
	AudioFeatures(ctx context.Context, ids []string) (catalog.BatchResult, error)
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetches charts from Billboard and audio features from Spotify",
	Long: `Stores data in a local SQLite database. Charts already stored are
skipped unless --force is given; songs already matched are never looked up again.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("client_id") == "" {
			return fmt.Errorf("required flag(s) \"client_id\" not set")
		}
		if viper.GetString("client_secret") == "" {
			return fmt.Errorf("required flag(s) \"client_secret\" not set")
		}
		if viper.GetInt("start") == 0 {
			return fmt.Errorf("required flag(s) \"start\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runUpdate(cmd.Context()); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().Int("start", 0, "First year to collect")
	viper.BindPFlag("start", updateCmd.Flags().Lookup("start"))

	updateCmd.Flags().Int("end", 0, "Last year to collect (default is --start)")
	viper.BindPFlag("end", updateCmd.Flags().Lookup("end"))

	var force bool
	updateCmd.Flags().BoolVarP(&force, "force", "f", false, "Re-fetch charts that are already stored")
	viper.BindPFlag("force", updateCmd.Flags().Lookup("force"))
}

func runUpdate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	obs, err := observationFromConfig()
	if err != nil {
		return err
	}
	config := UpdateConfig{
		DbPath:      viper.GetString("database"),
		StartYear:   viper.GetInt("start"),
		EndYear:     viper.GetInt("end"),
		Force:       viper.GetBool("force"),
		Observation: obs,
	}
	if config.EndYear == 0 {
		config.EndYear = config.StartYear
	}

	log := setupLogger(viper.GetString("log_level"))
	limiter := rate.NewLimiter(rate.Every(viper.GetDuration("request_interval")), 1)

	session, err := catalog.NewSession(ctx, catalog.Credentials{
		ClientID:     viper.GetString("client_id"),
		ClientSecret: viper.GetString("client_secret"),
	}, catalog.Options{
		RetryAttempts: viper.GetUint("retry_attempts"),
		RetryDelay:    viper.GetDuration("retry_delay"),
		Limiter:       limiter,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	u := &updater{
		db:      db,
		charts:  chart.NewBillboard(nil, "", ""),
		catalog: session,
		limiter: limiter,
		log:     log,
	}
	return u.update(ctx, config)
}

type updater struct {
	db      *store.Store
	charts  chart.Source
	catalog featureCatalog
	limiter *rate.Limiter
	log     zerolog.Logger
}

func (u *updater) update(ctx context.Context, config UpdateConfig) error {
	if err := u.collectCharts(ctx, chartDates(config.StartYear, config.EndYear, config.Observation), config.Force); err != nil {
		return fmt.Errorf("collecting charts: %w", err)
	}
	if err := u.resolveSongs(ctx); err != nil {
		return fmt.Errorf("resolving songs: %w", err)
	}
	if err := u.fetchFeatures(ctx); err != nil {
		return fmt.Errorf("fetching features: %w", err)
	}

	counts, err := u.db.GetCounts()
	if err != nil {
		return err
	}
	u.log.Info().
		Int("charts", counts.Charts).
		Int("entries", counts.Entries).
		Int("matched", counts.Matched).
		Int("not_found", counts.NotFound).
		Int("with_features", counts.WithFeature).
		Msg("update complete")
	return nil
}

func (u *updater) collectCharts(ctx context.Context, dates []time.Time, force bool) error {
	var missing []time.Time
	for _, date := range dates {
		if !force {
			stored, err := u.db.HasChart(date)
			if err != nil {
				return err
			}
			if stored {
				u.log.Debug().Str("date", date.Format(chart.DateFormat)).Msg("chart already stored")
				continue
			}
		}
		missing = append(missing, date)
	}
	u.log.Info().Int("charts", len(missing)).Int("stored", len(dates)-len(missing)).Msg("collecting charts")

	return chart.CollectEach(ctx, u.charts, missing, u.limiter, func(date time.Time, songs []chart.Song) error {
		if err := u.db.SaveChart(date, songs); err != nil {
			return err
		}
		u.log.Debug().Str("date", date.Format(chart.DateFormat)).Int("songs", len(songs)).Msg("stored chart")
		return nil
	})
}

func (u *updater) resolveSongs(ctx context.Context) error {
	songs, err := u.db.GetPendingSongs()
	if err != nil {
		return err
	}
	u.log.Info().Int("songs", len(songs)).Msg("matching songs to tracks")

	resolver := catalog.Resolver{
		Searcher: u.catalog,
		Log:      u.log,
		OnResult: func(song chart.Song, trackID string) error {
			if trackID == "" {
				return u.db.MarkNotFound(song.Date, song.Position)
			}
			return u.db.SetTrackID(song.Date, song.Position, trackID)
		},
	}
	resolved, notFound, err := resolver.Resolve(ctx, songs)
	if err != nil {
		return err
	}
	u.log.Info().Int("matched", len(resolved)).Int("not_found", notFound).Msg("matched songs")
	return nil
}

func (u *updater) fetchFeatures(ctx context.Context) error {
	ids, err := u.db.GetTrackIDsMissingFeatures()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	u.log.Info().Int("tracks", len(ids)).Msg("fetching audio features")

	for start := 0; start < len(ids); start += catalog.MaxBatchSize {
		end := min(start+catalog.MaxBatchSize, len(ids))
		result, err := u.catalog.AudioFeatures(ctx, ids[start:end])
		if err != nil {
			return err
		}
		if err := u.saveFeatures(result); err != nil {
			return err
		}
	}
	return nil
}

// saveFeatures stores one batch as soon as it arrives.
func (u *updater) saveFeatures(result catalog.BatchResult) error {
	imports := make([]store.FeatureImport, 0, len(result.Features))
	for _, f := range result.Features {
		imports = append(imports, store.FeatureImport{TrackID: f.TrackID, Key: f.Key, Values: f.Values})
	}
	if err := u.db.SaveFeatures(imports); err != nil {
		return err
	}

	if len(result.Missing) > 0 {
		u.log.Warn().Int("tracks", len(result.Missing)).Msg("no audio features available")
		if err := u.db.MarkFeaturesMissing(result.Missing); err != nil {
			return err
		}
	}
	return nil
}
