package plots

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/paulmach/orb"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	return NewRenderer(t.TempDir(), "westeros", "open-street-map", utils.NewLogger())
}

func assertRendered(t *testing.T, path string, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		t.Fatalf("rendered file missing: %v", statErr)
	}
	if info.Size() == 0 {
		t.Fatalf("rendered file %s is empty", path)
	}
}

func sampleListings() dataframe.DataFrame {
	return dataframe.New(
		series.New([]float64{100, 250, 80, 600}, series.Float, models.ColPrice),
		series.New([]int{10, 3, 25, 1}, series.Int, models.ColNumberOfReviews),
		series.New([]string{"Entire home/apt", "Private room", "Entire home/apt", "Shared room"},
			series.String, models.ColRoomType),
	)
}

func TestPriceHistogram(t *testing.T) {
	r := newTestRenderer(t)

	path, err := r.PriceHistogram(sampleListings(), models.ColPrice, 0)
	assertRendered(t, path, err)
	if filepath.Base(path) != "price_distribution_full.html" {
		t.Errorf("file name = %s; want price_distribution_full.html", filepath.Base(path))
	}

	path, err = r.PriceHistogram(sampleListings(), models.ColPrice, 500)
	assertRendered(t, path, err)
	if filepath.Base(path) != "price_distribution_filtered.html" {
		t.Errorf("file name = %s; want price_distribution_filtered.html", filepath.Base(path))
	}
}

func TestPriceHistogramNonNumericColumn(t *testing.T) {
	r := newTestRenderer(t)
	df := dataframe.New(series.New([]string{"$100"}, series.String, models.ColPrice))

	if _, err := r.PriceHistogram(df, models.ColPrice, 0); err == nil {
		t.Fatal("expected error for non-numeric price column, got nil")
	}
}

func TestReviewsByYear(t *testing.T) {
	r := newTestRenderer(t)
	trend := []models.YearCount{{Year: 2020, Count: 12}, {Year: 2021, Count: 30}}

	path, err := r.ReviewsByYear(trend)
	assertRendered(t, path, err)
}

func TestCorrelationHeatmap(t *testing.T) {
	r := newTestRenderer(t)
	m := models.CorrMatrix{
		Columns: []string{"a", "b"},
		Values:  [][]float64{{1, 0.5}, {0.5, 1}},
	}

	path, err := r.CorrelationHeatmap(m)
	assertRendered(t, path, err)
}

func TestCorrelationHeatmapEmpty(t *testing.T) {
	r := newTestRenderer(t)
	if _, err := r.CorrelationHeatmap(models.CorrMatrix{}); err == nil {
		t.Fatal("expected error for empty matrix, got nil")
	}
}

func TestValueCountsBar(t *testing.T) {
	r := newTestRenderer(t)
	counts := []models.ValueCount{{Value: "Entire home/apt", Count: 3}, {Value: "Private room", Count: 1}}

	path, err := r.ValueCountsBar(counts, "Listings by room type", "room type", "room_type_counts.html")
	assertRendered(t, path, err)
}

func TestGroupedMetricBar(t *testing.T) {
	r := newTestRenderer(t)
	metrics := []models.GroupMetric{{Group: "Downtown", Value: 210.5}, {Group: "Suburbs", Value: 95}}

	path, err := r.GroupedMetricBar(metrics, "Average price by neighbourhood",
		"neighbourhood", "average price", "avg_price_by_neighbourhood.html")
	assertRendered(t, path, err)
}

func TestScatterWithCategories(t *testing.T) {
	r := newTestRenderer(t)

	path, err := r.Scatter(sampleListings(), models.ColNumberOfReviews, models.ColPrice,
		models.ColRoomType, "Price vs reviews", "price_vs_reviews.html")
	assertRendered(t, path, err)
}

func TestBoxPlot(t *testing.T) {
	r := newTestRenderer(t)

	path, err := r.BoxPlot(sampleListings(), models.ColRoomType, models.ColPrice,
		"Price by room type", "price_by_room_type_box.html")
	assertRendered(t, path, err)
}

func TestGeoScatter(t *testing.T) {
	r := newTestRenderer(t)
	table := dataframe.New(
		series.New([]float64{100, 250}, series.Float, models.ColPrice),
	)
	gt := &models.GeoTable{
		Table:    table,
		Geometry: []orb.Point{{-74.0, 40.7}, {-74.1, 40.8}},
		CRS:      models.DefaultCRS,
	}

	path, err := r.GeoScatter(gt, models.ColPrice, "Listing prices by location", "geo_price_distribution.html")
	assertRendered(t, path, err)
}

func TestGeoScatterEmpty(t *testing.T) {
	r := newTestRenderer(t)
	if _, err := r.GeoScatter(&models.GeoTable{}, models.ColPrice, "x", "x.html"); err == nil {
		t.Fatal("expected error for empty geo table, got nil")
	}
}

func TestHistogramBuckets(t *testing.T) {
	labels, counts := histogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 5)
	if len(labels) != 5 || len(counts) != 5 {
		t.Fatalf("got %d labels, %d counts; want 5 each", len(labels), len(counts))
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != 10 {
		t.Errorf("bucket counts sum to %d; want 10", total)
	}
}

func TestFiveNumber(t *testing.T) {
	got := fiveNumber([]float64{4, 1, 3, 2, 5})
	if got[0] != 1 || got[4] != 5 {
		t.Errorf("min/max = %.0f/%.0f; want 1/5", got[0], got[4])
	}
	if got[2] != 3 {
		t.Errorf("median = %.1f; want 3", got[2])
	}
}
