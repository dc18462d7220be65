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
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ademuri/hot-100-features/internal/analysis"
	"github.com/ademuri/hot-100-features/internal/catalog"
	"github.com/ademuri/hot-100-features/internal/chart"
	"github.com/ademuri/hot-100-features/internal/store"
)

type fakeCharts struct {
	charts map[int][]chart.Song
	down   map[int]bool
	calls  int
}

func (f *fakeCharts) Chart(ctx context.Context, date time.Time) ([]chart.Song, error) {
	f.calls++
	if f.down[date.Year()] {
		return nil, errors.New("billboard down")
	}
	var songs []chart.Song
	for _, s := range f.charts[date.Year()] {
		s.Date = date
		songs = append(songs, s)
	}
	return songs, nil
}

type fakeCatalog struct {
	tracks   map[string]string
	features map[string]catalog.Features
	searches int
	fetched  [][]string
	// failAt makes the fetch with this 1-based index fail.
	failAt int
}

func (f *fakeCatalog) SearchTrack(ctx context.Context, title string, artist string) (string, error) {
	f.searches++
	id, ok := f.tracks[title+"|"+artist]
	if !ok {
		return "", catalog.NotFoundError{Title: title, Artist: artist}
	}
	return id, nil
}

func (f *fakeCatalog) AudioFeatures(ctx context.Context, ids []string) (catalog.BatchResult, error) {
	f.fetched = append(f.fetched, ids)
	if len(f.fetched) == f.failAt {
		return catalog.BatchResult{}, errors.New("spotify down")
	}
	var result catalog.BatchResult
	for _, id := range ids {
		features, ok := f.features[id]
		if !ok {
			result.Missing = append(result.Missing, id)
			continue
		}
		result.Features = append(result.Features, features)
	}
	return result, nil
}

func TestUpdateCommand(t *testing.T) {
	if updateCmd == nil {
		t.Error("updateCmd is nil")
	}
	if updateCmd.Use != "update" {
		t.Errorf("expected use 'update', got %s", updateCmd.Use)
	}
}

func newTestUpdater(t *testing.T) (*updater, *fakeCharts, *fakeCatalog) {
	t.Helper()
	db, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	charts := &fakeCharts{charts: map[int][]chart.Song{
		2019: {
			{Position: 1, Title: "Old Town Road", Artist: "Lil Nas X Featuring Billy Ray Cyrus"},
			{Position: 2, Title: "Unmatched", Artist: "Nobody"},
		},
		2020: {
			{Position: 1, Title: "Rockstar", Artist: "DaBaby Featuring Roddy Ricch"},
		},
	}}
	cat := &fakeCatalog{
		tracks: map[string]string{
			"Old Town Road|lil nas  billy ray cyrus": "otr",
			"Rockstar|dababy  roddy ricch":             "rockstar",
		},
		features: map[string]catalog.Features{
			"otr":      {TrackID: "otr", Key: 5, Values: map[string]float64{"energy": 0.6}},
			"rockstar": {TrackID: "rockstar", Key: 11, Values: map[string]float64{"energy": 0.7}},
		},
	}

	return &updater{db: db, charts: charts, catalog: cat, log: zerolog.New(io.Discard)}, charts, cat
}

func TestUpdatePipeline(t *testing.T) {
	u, charts, cat := newTestUpdater(t)
	config := UpdateConfig{StartYear: 2019, EndYear: 2020}

	if err := u.update(context.Background(), config); err != nil {
		t.Fatalf("update: %v", err)
	}

	counts, err := u.db.GetCounts()
	if err != nil {
		t.Fatalf("GetCounts: %v", err)
	}
	want := store.Counts{Charts: 2, Entries: 3, Pending: 0, Matched: 2, NotFound: 1, WithFeature: 2}
	if counts != want {
		t.Errorf("counts: got %+v, want %+v", counts, want)
	}
	if charts.calls != 2 {
		t.Errorf("expected 2 chart fetches, got %d", charts.calls)
	}

	table, err := analysis.LoadTable(u.db, analysis.Observation{})
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	averages, err := analysis.AverageByDate(2019, 2020, "energy", table)
	if err != nil {
		t.Fatalf("AverageByDate: %v", err)
	}
	if len(averages) != 2 || averages[0].Average != 0.6 || averages[1].Average != 0.7 {
		t.Errorf("unexpected averages: %+v", averages)
	}

	// A second run has nothing left to do.
	searches := cat.searches
	if err := u.update(context.Background(), config); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if charts.calls != 2 {
		t.Errorf("stored charts should not be fetched again, got %d fetches", charts.calls)
	}
	if cat.searches != searches {
		t.Errorf("resolved songs should not be searched again")
	}
	if len(cat.fetched) != 1 {
		t.Errorf("features should only be fetched once, got %d fetches", len(cat.fetched))
	}
}

func TestUpdateForceRefetchesCharts(t *testing.T) {
	u, charts, _ := newTestUpdater(t)
	config := UpdateConfig{StartYear: 2020, EndYear: 2020}

	if err := u.update(context.Background(), config); err != nil {
		t.Fatalf("update: %v", err)
	}
	config.Force = true
	if err := u.update(context.Background(), config); err != nil {
		t.Fatalf("forced update: %v", err)
	}

	if charts.calls != 2 {
		t.Errorf("expected the chart to be fetched twice, got %d", charts.calls)
	}
	counts, err := u.db.GetCounts()
	if err != nil {
		t.Fatalf("GetCounts: %v", err)
	}
	if counts.Entries != 1 || counts.Matched != 1 {
		t.Errorf("re-fetched chart should be stored once and matched again: %+v", counts)
	}
}

func TestUpdateMarksMissingFeatures(t *testing.T) {
	u, _, cat := newTestUpdater(t)
	delete(cat.features, "rockstar")

	if err := u.update(context.Background(), UpdateConfig{StartYear: 2020, EndYear: 2020}); err != nil {
		t.Fatalf("update: %v", err)
	}
	ids, err := u.db.GetTrackIDsMissingFeatures()
	if err != nil {
		t.Fatalf("GetTrackIDsMissingFeatures: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("tracks without features should not be requested again, got %v", ids)
	}
}

func TestCollectChartsKeepsFetchedChartsOnFailure(t *testing.T) {
	u, charts, _ := newTestUpdater(t)
	charts.charts[2021] = []chart.Song{{Position: 1, Title: "Levitating", Artist: "Dua Lipa"}}
	charts.down = map[int]bool{2021: true}

	err := u.collectCharts(context.Background(), chartDates(2019, 2021, analysis.Observation{}), false)
	if err == nil {
		t.Fatalf("collectCharts should have failed on 2021")
	}

	for _, year := range []int{2019, 2020} {
		stored, err := u.db.HasChart(june(year))
		if err != nil {
			t.Fatalf("HasChart: %v", err)
		}
		if !stored {
			t.Errorf("chart %d should be stored after the failure", year)
		}
	}

	// The next run only fetches what is still missing.
	charts.down = nil
	charts.calls = 0
	if err := u.collectCharts(context.Background(), chartDates(2019, 2021, analysis.Observation{}), false); err != nil {
		t.Fatalf("collectCharts: %v", err)
	}
	if charts.calls != 1 {
		t.Errorf("expected only 2021 to be fetched again, got %d fetches", charts.calls)
	}
}

func TestFetchFeaturesKeepsEarlierBatchesOnFailure(t *testing.T) {
	u, _, cat := newTestUpdater(t)

	var songs []chart.Song
	cat.features = map[string]catalog.Features{}
	for i := 1; i <= catalog.MaxBatchSize+1; i++ {
		songs = append(songs, chart.Song{Date: june(2020), Position: i, Title: fmt.Sprintf("Song %d", i), Artist: "Artist"})
	}
	if err := u.db.SaveChart(june(2020), songs); err != nil {
		t.Fatalf("SaveChart: %v", err)
	}
	for _, song := range songs {
		id := fmt.Sprintf("t%03d", song.Position)
		if err := u.db.SetTrackID(song.Date, song.Position, id); err != nil {
			t.Fatalf("SetTrackID: %v", err)
		}
		cat.features[id] = catalog.Features{TrackID: id, Key: 0, Values: map[string]float64{"energy": 0.5}}
	}
	cat.failAt = 2

	if err := u.fetchFeatures(context.Background()); err == nil {
		t.Fatalf("fetchFeatures should have failed on the second batch")
	}
	if len(cat.fetched) != 2 || len(cat.fetched[0]) != catalog.MaxBatchSize || len(cat.fetched[1]) != 1 {
		t.Fatalf("unexpected batches: %d", len(cat.fetched))
	}

	remaining, err := u.db.GetTrackIDsMissingFeatures()
	if err != nil {
		t.Fatalf("GetTrackIDsMissingFeatures: %v", err)
	}
	if len(remaining) != 1 || remaining[0] != "t101" {
		t.Errorf("only the failed batch should remain, got %v", remaining)
	}
}
