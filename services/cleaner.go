package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// currencyRegexp matches the symbols stripped from price strings before parsing.
var currencyRegexp = regexp.MustCompile(`[$,]`)

// dateFormats are tried in order when normalising last-review values.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// criticalColumns must be non-missing for a row to survive cleaning. Only the
// subset actually present in the table is checked.
var criticalColumns = []string{models.ColPrice, models.ColLatitude, models.ColLongitude}

// Cleaner normalises column types and applies the per-column missing-value
// policy to a listings table.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// cleaningRule binds a column to the transformation applied when that column
// is present. Rules run in declaration order; absent columns are skipped
// silently. A rule with an empty column name always runs and gates on column
// presence itself.
type cleaningRule struct {
	column string
	apply  func(dataframe.DataFrame) dataframe.DataFrame
}

func (c *Cleaner) rules() []cleaningRule {
	return []cleaningRule{
		{models.ColReviewsPerMonth, c.fillReviewsPerMonth},
		{models.ColLastReview, c.normaliseDates},
		{"", c.dropMissingCritical},
		{models.ColPrice, c.parsePrices},
		{models.ColMinimumNights, c.toInt(models.ColMinimumNights)},
		{models.ColNumberOfReviews, c.toInt(models.ColNumberOfReviews)},
		{models.ColRoomType, c.fillCategorical(models.ColRoomType)},
		{models.ColNeighbourhood, c.fillCategorical(models.ColNeighbourhood)},
	}
}

// Clean applies the column policy table and returns a new table; the caller's
// table is never mutated. The critical-column row drop runs before price
// parsing, and a second drop removes rows whose price failed to parse, so a
// row missing a coordinate is gone before any price repair is attempted.
func (c *Cleaner) Clean(df dataframe.DataFrame) dataframe.DataFrame {
	out := df.Copy()
	if out.Nrow() == 0 {
		return out
	}

	for _, rule := range c.rules() {
		if rule.column != "" && !hasColumn(out, rule.column) {
			continue
		}
		out = rule.apply(out)
		if out.Nrow() == 0 {
			break
		}
	}

	c.logger.Info("[cleaner] Cleaned %d rows to %d rows", df.Nrow(), out.Nrow())
	return out
}

func (c *Cleaner) fillReviewsPerMonth(df dataframe.DataFrame) dataframe.DataFrame {
	vals := df.Col(models.ColReviewsPerMonth).Float()
	imputed := 0
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = 0
			imputed++
		}
	}
	if imputed > 0 {
		c.logger.Info("[cleaner] Imputed %d missing %s values with 0", imputed, models.ColReviewsPerMonth)
	}
	return df.Mutate(series.New(vals, series.Float, models.ColReviewsPerMonth))
}

func (c *Cleaner) normaliseDates(df dataframe.DataFrame) dataframe.DataFrame {
	recs := df.Col(models.ColLastReview).Records()
	out := make([]string, len(recs))
	for i, r := range recs {
		if t, ok := parseDate(r); ok {
			out[i] = t.Format("2006-01-02")
		} else {
			out[i] = "" // unparseable dates are treated as missing, not errors
		}
	}
	return df.Mutate(series.New(out, series.String, models.ColLastReview))
}

// dropMissingCritical removes rows missing any present critical column and
// coerces the coordinate columns to numeric, counting unparseable coordinate
// values as missing.
func (c *Cleaner) dropMissingCritical(df dataframe.DataFrame) dataframe.DataFrame {
	for _, col := range []string{models.ColLatitude, models.ColLongitude} {
		if hasColumn(df, col) {
			df = df.Mutate(series.New(df.Col(col).Float(), series.Float, col))
		}
	}

	var present []string
	for _, col := range criticalColumns {
		if hasColumn(df, col) {
			present = append(present, col)
		}
	}
	if len(present) == 0 {
		return df
	}

	cols := make([]series.Series, len(present))
	for i, name := range present {
		cols[i] = df.Col(name)
	}

	keep := make([]int, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		missing := false
		for _, col := range cols {
			if isMissing(col.Elem(i)) {
				missing = true
				break
			}
		}
		if !missing {
			keep = append(keep, i)
		}
	}

	if dropped := df.Nrow() - len(keep); dropped > 0 {
		c.logger.Info("[cleaner] Dropped %d rows missing %s", dropped, strings.Join(present, "/"))
	}
	return df.Subset(keep)
}

func (c *Cleaner) parsePrices(df dataframe.DataFrame) dataframe.DataFrame {
	col := df.Col(models.ColPrice)
	if col.Type() == series.Float || col.Type() == series.Int {
		return df
	}

	recs := col.Records()
	vals := make([]float64, len(recs))
	for i, r := range recs {
		vals[i] = parsePrice(r)
	}
	df = df.Mutate(series.New(vals, series.Float, models.ColPrice))

	// Second pass: parsing may have produced new missing prices.
	keep := make([]int, 0, len(vals))
	for i, v := range vals {
		if !math.IsNaN(v) {
			keep = append(keep, i)
		}
	}
	if dropped := len(vals) - len(keep); dropped > 0 {
		c.logger.Info("[cleaner] Dropped %d rows with unparseable price values", dropped)
		df = df.Subset(keep)
	}
	return df
}

func (c *Cleaner) toInt(column string) func(dataframe.DataFrame) dataframe.DataFrame {
	return func(df dataframe.DataFrame) dataframe.DataFrame {
		vals := df.Col(column).Float()
		ints := make([]int, len(vals))
		imputed := 0
		for i, v := range vals {
			if math.IsNaN(v) {
				imputed++
				continue
			}
			ints[i] = int(v)
		}
		if imputed > 0 {
			c.logger.Info("[cleaner] Imputed %d missing %s values with 0", imputed, column)
		}
		return df.Mutate(series.New(ints, series.Int, column))
	}
}

func (c *Cleaner) fillCategorical(column string) func(dataframe.DataFrame) dataframe.DataFrame {
	return func(df dataframe.DataFrame) dataframe.DataFrame {
		recs := df.Col(column).Records()
		out := make([]string, len(recs))
		replaced := 0
		for i, r := range recs {
			s := strings.TrimSpace(r)
			if missingRecord(s) {
				s = models.Unknown
				replaced++
			}
			out[i] = s
		}
		if replaced > 0 {
			c.logger.Info("[cleaner] Replaced %d missing %s values with %q", replaced, column, models.Unknown)
		}
		return df.Mutate(series.New(out, series.String, column))
	}
}

// parsePrice strips the currency symbol and thousands separators, so
// "$1,200" parses to 1200. Unparseable input yields NaN.
func parsePrice(raw string) float64 {
	s := strings.TrimSpace(currencyRegexp.ReplaceAllString(raw, ""))
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if missingRecord(s) {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// isMissing reports whether an element is NA or one of the string forms an
// empty CSV cell arrives as.
func isMissing(e series.Element) bool {
	return e.IsNA() || missingRecord(e.String())
}

func missingRecord(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "NaN" || s == "NA"
}
