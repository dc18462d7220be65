package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/zmb3/spotify/v2"

	"github.com/ademuri/hot-100-features/internal/chart"
)

func newTestSession(t *testing.T, handler http.HandlerFunc) *Session {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := spotify.New(server.Client(), spotify.WithBaseURL(server.URL+"/"))
	return NewSessionWithClient(client, Options{
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		Logger:        zerolog.Nop(),
	})
}

func audioFeatureJSON(id string, key int, loudness float64) string {
	return fmt.Sprintf(`{"id":%q,"key":%d,"loudness":%g,"energy":0.5,"duration_ms":200000,"mode":1,"tempo":120.5,"time_signature":4}`, id, key, loudness)
}

func TestSearchTrack(t *testing.T) {
	var gotQuery string
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("limit: got %q, want 1", r.URL.Query().Get("limit"))
		}
		fmt.Fprint(w, `{"tracks":{"items":[{"id":"4JehYebiI9JE8sR8MisGVb","name":"Halo"}],"total":1}}`)
	})

	id, err := s.SearchTrack(context.Background(), "Halo", "beyonce")
	if err != nil {
		t.Fatalf("SearchTrack: %v", err)
	}
	if id != "4JehYebiI9JE8sR8MisGVb" {
		t.Errorf("id: got %q", id)
	}
	if gotQuery != "Halo beyonce" {
		t.Errorf("query: got %q, want %q", gotQuery, "Halo beyonce")
	}
}

func TestSearchTrackNotFound(t *testing.T) {
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tracks":{"items":[],"total":0}}`)
	})

	_, err := s.SearchTrack(context.Background(), "asdjflasjdf", "lil nas x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchTrackRetriesFailedRequests(t *testing.T) {
	var calls int32
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"status":503,"message":"try later"}}`)
			return
		}
		fmt.Fprint(w, `{"tracks":{"items":[{"id":"abc","name":"Song"}],"total":1}}`)
	})

	id, err := s.SearchTrack(context.Background(), "Song", "artist")
	if err != nil {
		t.Fatalf("SearchTrack: %v", err)
	}
	if id != "abc" {
		t.Errorf("id: got %q, want abc", id)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestSearchTrackGivesUp(t *testing.T) {
	var calls int32
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"status":500,"message":"boom"}}`)
	})

	_, err := s.SearchTrack(context.Background(), "Song", "artist")
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("a failed request is not a missing track: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestAudioFeaturesBatches(t *testing.T) {
	var batches []int
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		batches = append(batches, len(ids))
		records := make([]string, len(ids))
		for i, id := range ids {
			records[i] = audioFeatureJSON(id, i%12, -5)
		}
		fmt.Fprintf(w, `{"audio_features":[%s]}`, strings.Join(records, ","))
	})

	ids := make([]string, 250)
	for i := range ids {
		ids[i] = fmt.Sprintf("track%03d", i)
	}

	result, err := s.AudioFeatures(context.Background(), ids)
	if err != nil {
		t.Fatalf("AudioFeatures: %v", err)
	}
	if want := []int{100, 100, 50}; fmt.Sprint(batches) != fmt.Sprint(want) {
		t.Errorf("batch sizes: got %v, want %v", batches, want)
	}
	if len(result.Features) != len(ids) {
		t.Fatalf("got %d features, want %d", len(result.Features), len(ids))
	}
	for i, f := range result.Features {
		if f.TrackID != ids[i] {
			t.Fatalf("feature %d: got track %q, want %q", i, f.TrackID, ids[i])
		}
	}

	first := result.Features[0]
	if first.Values["loudness"] != -5 || first.Values["duration_ms"] != 200000 || first.Values["tempo"] != 120.5 {
		t.Errorf("unexpected values: %v", first.Values)
	}
	if len(first.Values) != len(FeatureNames) {
		t.Errorf("got %d feature values, want %d", len(first.Values), len(FeatureNames))
	}
}

func TestAudioFeaturesSkipsNullRecords(t *testing.T) {
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"audio_features":[%s,null]}`, audioFeatureJSON("a", 0, -3))
	})

	result, err := s.AudioFeatures(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("AudioFeatures: %v", err)
	}
	if len(result.Features) != 1 || result.Features[0].TrackID != "a" {
		t.Errorf("features: got %+v", result.Features)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "b" {
		t.Errorf("missing: got %v, want [b]", result.Missing)
	}
}

func TestAudioFeaturesRejectsMisalignedBatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "short", body: fmt.Sprintf(`{"audio_features":[%s]}`, audioFeatureJSON("a", 0, -3))},
		{name: "reordered", body: fmt.Sprintf(`{"audio_features":[%s,%s]}`, audioFeatureJSON("b", 0, -3), audioFeatureJSON("a", 1, -4))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			if _, err := s.AudioFeatures(context.Background(), []string{"a", "b"}); err == nil {
				t.Fatalf("expected error for misaligned batch")
			}
		})
	}
}

type fakeSearcher struct {
	ids   map[string]string
	fail  string
	calls []string
}

func (f *fakeSearcher) SearchTrack(ctx context.Context, title string, artist string) (string, error) {
	f.calls = append(f.calls, title+"|"+artist)
	if title == f.fail {
		return "", errors.New("service unavailable")
	}
	id, ok := f.ids[title]
	if !ok {
		return "", NotFoundError{Title: title, Artist: artist}
	}
	return id, nil
}

func TestResolve(t *testing.T) {
	date := time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)
	songs := []chart.Song{
		{Date: date, Position: 1, Title: "Rockstar", Artist: "DaBaby Featuring Roddy Ricch"},
		{Date: date, Position: 2, Title: "Unknown Song", Artist: "Nobody"},
		{Date: date, Position: 3, Title: "Blinding Lights", Artist: "The Weeknd"},
	}
	searcher := &fakeSearcher{ids: map[string]string{"Rockstar": "id1", "Blinding Lights": "id3"}}

	var seen []string
	r := &Resolver{
		Searcher: searcher,
		Log:      zerolog.Nop(),
		OnResult: func(song chart.Song, trackID string) error {
			seen = append(seen, trackID)
			return nil
		},
	}
	resolved, notFound, err := r.Resolve(context.Background(), songs)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if notFound != 1 {
		t.Errorf("notFound: got %d, want 1", notFound)
	}
	if len(resolved) != 2 || resolved[0].TrackID != "id1" || resolved[1].TrackID != "id3" {
		t.Fatalf("resolved: got %+v", resolved)
	}
	if resolved[1].Position != 3 {
		t.Errorf("resolved song should keep its chart position, got %d", resolved[1].Position)
	}
	if searcher.calls[0] != "Rockstar|dababy  roddy ricch" {
		t.Errorf("artist should be normalized before search, got %q", searcher.calls[0])
	}
	if fmt.Sprint(seen) != fmt.Sprint([]string{"id1", "", "id3"}) {
		t.Errorf("OnResult calls: got %q", seen)
	}
}

func TestResolveAbortsOnHardFailure(t *testing.T) {
	date := time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)
	songs := []chart.Song{
		{Date: date, Position: 1, Title: "Rockstar", Artist: "DaBaby"},
		{Date: date, Position: 2, Title: "Broken", Artist: "Nobody"},
	}
	r := &Resolver{Searcher: &fakeSearcher{ids: map[string]string{"Rockstar": "id1"}, fail: "Broken"}, Log: zerolog.Nop()}

	if _, _, err := r.Resolve(context.Background(), songs); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewSessionRequiresCredentials(t *testing.T) {
	_, err := NewSession(context.Background(), Credentials{ClientID: "id"}, Options{})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}
