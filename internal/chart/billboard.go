package chart

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultBillboardURL = "https://www.billboard.com/charts"

// Billboard scrapes chart pages from billboard.com.
type Billboard struct {
	httpClient *http.Client
	baseURL    string
	chartName  string
	userAgent  string
}

// NewBillboard returns a scraper for the named chart ("hot-100"). An empty
// baseURL uses billboard.com.
func NewBillboard(httpClient *http.Client, baseURL string, chartName string) *Billboard {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBillboardURL
	}
	if chartName == "" {
		chartName = "hot-100"
	}
	return &Billboard{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		chartName:  chartName,
		userAgent:  "hot-100-features/1.0",
	}
}

var _ Source = (*Billboard)(nil)

// Chart fetches and parses the snapshot for date.
func (b *Billboard) Chart(ctx context.Context, date time.Time) ([]Song, error) {
	url := fmt.Sprintf("%s/%s/%s/", b.baseURL, b.chartName, date.Format(DateFormat))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("billboard: %w", err)
	}
	req.Header.Set("User-Agent", b.userAgent)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billboard: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("billboard: fetching %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("billboard: parsing %s: %w", url, err)
	}

	songs := parseChart(doc, date)
	if len(songs) == 0 {
		return nil, fmt.Errorf("billboard: no chart entries found for %s", date.Format(DateFormat))
	}
	return songs, nil
}

func parseChart(doc *goquery.Document, date time.Time) []Song {
	var songs []Song
	doc.Find("div.o-chart-results-list-row-container").Each(func(_ int, row *goquery.Selection) {
		if len(songs) >= MaxEntries {
			return
		}
		title := row.Find("h3#title-of-a-story").First()
		artist := title.NextFiltered("span.c-label")

		name := cleanText(title.Text())
		if name == "" {
			return
		}
		songs = append(songs, Song{
			Date:     date,
			Position: len(songs) + 1,
			Title:    name,
			Artist:   cleanText(artist.Text()),
		})
	})
	return songs
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
