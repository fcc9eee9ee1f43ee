package models

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/paulmach/orb"
)

// Canonical column names of the listings dataset. The source CSV is not
// guaranteed to carry every column; cleaning rules skip absent ones.
const (
	ColID              = "id"
	ColName            = "name"
	ColPrice           = "price"
	ColMinimumNights   = "minimum_nights"
	ColNumberOfReviews = "number_of_reviews"
	ColReviewsPerMonth = "reviews_per_month"
	ColLastReview      = "last_review"
	ColRoomType        = "room_type"
	ColNeighbourhood   = "neighbourhood"
	ColLongitude       = "longitude"
	ColLatitude        = "latitude"
)

// Unknown is the placeholder substituted for missing or empty categorical
// values during cleaning.
const Unknown = "Unknown"

// DefaultCRS is the coordinate reference system assumed for the longitude and
// latitude columns (WGS84).
const DefaultCRS = "EPSG:4326"

// GeoTable is a listings table augmented with one point geometry per row.
// The geometry is derived from the longitude/latitude columns, which remain
// in the table as the source of truth.
type GeoTable struct {
	Table    dataframe.DataFrame
	Geometry []orb.Point
	CRS      string
}

// Nrow returns the number of rows in the geo table.
func (g *GeoTable) Nrow() int { return len(g.Geometry) }

// YearCount is one bucket of the yearly review trend.
type YearCount struct {
	Year  int
	Count int
}

// CorrMatrix holds pairwise Pearson correlations between numeric columns.
// Values is square with the same ordering as Columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// Empty reports whether the matrix holds no columns at all.
func (m CorrMatrix) Empty() bool { return len(m.Columns) == 0 }

// GroupMetric is one group's aggregated metric value.
type GroupMetric struct {
	Group string
	Value float64
}

// ValueCount is the frequency of one distinct categorical value.
type ValueCount struct {
	Value string
	Count int
}
