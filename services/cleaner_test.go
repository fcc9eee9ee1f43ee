package services

import (
	"math"
	"reflect"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

// rawTable builds an all-string table the way the loader produces one.
func rawTable(records [][]string) dataframe.DataFrame {
	return dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"$100", 100},
		{"$1,200", 1200},
		{"1200.50", 1200.50},
		{" $45 ", 45},
		{"", math.NaN()},
		{"free", math.NaN()},
	}

	for _, tt := range tests {
		got := parsePrice(tt.raw)
		if math.IsNaN(tt.want) {
			if !math.IsNaN(got) {
				t.Errorf("parsePrice(%q) = %.2f; want NaN", tt.raw, got)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("parsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestCleanerParsesPricesAndDropsBadOnes(t *testing.T) {
	c := NewCleaner(newTestLogger())
	df := rawTable([][]string{
		{models.ColPrice, models.ColLatitude, models.ColLongitude},
		{"$100", "40.7", "-74.0"},
		{"$1,200", "40.8", "-74.1"},
		{"not a price", "40.9", "-74.2"},
	})

	clean := c.Clean(df)
	if clean.Nrow() != 2 {
		t.Fatalf("expected 2 rows after cleaning, got %d", clean.Nrow())
	}
	if typ := clean.Col(models.ColPrice).Type(); typ != series.Float {
		t.Errorf("price column type = %s; want float", typ)
	}

	prices := clean.Col(models.ColPrice).Float()
	want := []float64{100, 1200}
	if !reflect.DeepEqual(prices, want) {
		t.Errorf("prices = %v; want %v", prices, want)
	}
}

func TestCleanerDropsRowsMissingCoordinates(t *testing.T) {
	c := NewCleaner(newTestLogger())
	df := rawTable([][]string{
		{models.ColPrice, models.ColLatitude, models.ColLongitude},
		{"$100", "", "-74.0"},
		{"$200", "40.8", "-74.1"},
	})

	clean := c.Clean(df)
	if clean.Nrow() != 1 {
		t.Fatalf("expected 1 row after dropping missing latitude, got %d", clean.Nrow())
	}
	if got := clean.Col(models.ColPrice).Float()[0]; got != 200 {
		t.Errorf("surviving price = %.0f; want 200", got)
	}
}

func TestCleanerNeverAddsRows(t *testing.T) {
	c := NewCleaner(newTestLogger())
	df := rawTable([][]string{
		{models.ColPrice, models.ColLatitude, models.ColLongitude, models.ColRoomType},
		{"$100", "40.7", "-74.0", "Entire home/apt"},
		{"", "40.8", "-74.1", "Private room"},
		{"$300", "", "-74.2", ""},
	})

	clean := c.Clean(df)
	if clean.Nrow() > df.Nrow() {
		t.Errorf("cleaning grew the table from %d to %d rows", df.Nrow(), clean.Nrow())
	}
}

func TestCleanerIsIdempotent(t *testing.T) {
	c := NewCleaner(newTestLogger())
	df := rawTable([][]string{
		{models.ColPrice, models.ColLatitude, models.ColLongitude, models.ColRoomType, models.ColReviewsPerMonth},
		{"$100", "40.7", "-74.0", "Entire home/apt", "1.5"},
		{"$250", "40.8", "-74.1", "", ""},
	})

	once := c.Clean(df)
	twice := c.Clean(once)

	if once.Nrow() != twice.Nrow() {
		t.Fatalf("second clean changed row count from %d to %d", once.Nrow(), twice.Nrow())
	}
	if !reflect.DeepEqual(once.Records(), twice.Records()) {
		t.Errorf("second clean changed the table:\nonce:  %v\ntwice: %v", once.Records(), twice.Records())
	}
}

func TestCleanerFillsCategoricalWithUnknown(t *testing.T) {
	c := NewCleaner(newTestLogger())
	df := rawTable([][]string{
		{models.ColPrice, models.ColLatitude, models.ColLongitude, models.ColRoomType, models.ColNeighbourhood},
		{"$100", "40.7", "-74.0", "", "NaN"},
	})

	clean := c.Clean(df)
	if got := clean.Col(models.ColRoomType).Records()[0]; got != models.Unknown {
		t.Errorf("room_type = %q; want %q", got, models.Unknown)
	}
	if got := clean.Col(models.ColNeighbourhood).Records()[0]; got != models.Unknown {
		t.Errorf("neighbourhood = %q; want %q", got, models.Unknown)
	}
}

func TestCleanerImputesReviewsPerMonth(t *testing.T) {
	c := NewCleaner(newTestLogger())
	df := rawTable([][]string{
		{models.ColPrice, models.ColLatitude, models.ColLongitude, models.ColReviewsPerMonth},
		{"$100", "40.7", "-74.0", ""},
		{"$200", "40.8", "-74.1", "2.5"},
	})

	clean := c.Clean(df)
	got := clean.Col(models.ColReviewsPerMonth).Float()
	want := []float64{0, 2.5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reviews_per_month = %v; want %v", got, want)
	}
}

func TestCleanerCoercesCountColumns(t *testing.T) {
	c := NewCleaner(newTestLogger())
	df := rawTable([][]string{
		{models.ColPrice, models.ColLatitude, models.ColLongitude, models.ColMinimumNights, models.ColNumberOfReviews},
		{"$100", "40.7", "-74.0", "3.0", "x"},
	})

	clean := c.Clean(df)
	if typ := clean.Col(models.ColMinimumNights).Type(); typ != series.Int {
		t.Errorf("minimum_nights type = %s; want int", typ)
	}
	if got := clean.Col(models.ColMinimumNights).Records()[0]; got != "3" {
		t.Errorf("minimum_nights = %q; want \"3\"", got)
	}
	if got := clean.Col(models.ColNumberOfReviews).Records()[0]; got != "0" {
		t.Errorf("unparseable number_of_reviews = %q; want \"0\"", got)
	}
}

func TestCleanerNormalisesDates(t *testing.T) {
	c := NewCleaner(newTestLogger())
	df := rawTable([][]string{
		{models.ColPrice, models.ColLatitude, models.ColLongitude, models.ColLastReview},
		{"$100", "40.7", "-74.0", "2021/06/15"},
		{"$200", "40.8", "-74.1", "garbage"},
	})

	clean := c.Clean(df)
	dates := clean.Col(models.ColLastReview).Records()
	if dates[0] != "2021-06-15" {
		t.Errorf("normalised date = %q; want \"2021-06-15\"", dates[0])
	}
	if dates[1] != "" {
		t.Errorf("unparseable date = %q; want empty", dates[1])
	}
}

func TestCleanerSkipsAbsentColumns(t *testing.T) {
	c := NewCleaner(newTestLogger())
	df := rawTable([][]string{
		{models.ColName},
		{"Cozy loft"},
		{"Sunny studio"},
	})

	clean := c.Clean(df)
	if clean.Nrow() != 2 {
		t.Errorf("expected all rows kept when no critical column exists, got %d", clean.Nrow())
	}
}

func TestCleanerEmptyInput(t *testing.T) {
	c := NewCleaner(newTestLogger())
	df := rawTable([][]string{
		{models.ColPrice, models.ColLatitude, models.ColLongitude},
	})

	clean := c.Clean(df)
	if clean.Nrow() != 0 {
		t.Errorf("expected 0 rows for empty input, got %d", clean.Nrow())
	}
}
