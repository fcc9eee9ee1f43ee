package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// Aggregation function names accepted by GroupedMetric.
const (
	AggMean   = "mean"
	AggSum    = "sum"
	AggMin    = "min"
	AggMax    = "max"
	AggMedian = "median"
	AggCount  = "count"
)

// Analyzer computes read-only aggregate views over a cleaned listings table.
// Every view is recomputed from scratch on each call; nothing is cached.
type Analyzer struct {
	logger *utils.Logger
}

// NewAnalyzer creates an Analyzer with the given logger.
func NewAnalyzer(logger *utils.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// ReviewTrends counts reviews per calendar year of dateCol, ascending by
// year. Unparseable dates are skipped; an input with no parseable dates
// yields an empty result rather than an error.
func (a *Analyzer) ReviewTrends(df dataframe.DataFrame, dateCol string) ([]models.YearCount, error) {
	if !hasColumn(df, dateCol) {
		return nil, fmt.Errorf("analyzer: column %q not found: date column required", dateCol)
	}

	counts := make(map[int]int)
	for _, rec := range df.Col(dateCol).Records() {
		t, ok := parseDate(rec)
		if !ok {
			continue
		}
		counts[t.Year()]++
	}
	if len(counts) == 0 {
		a.logger.Warn("[analyzer] No parseable dates in column %q", dateCol)
		return nil, nil
	}

	trend := make([]models.YearCount, 0, len(counts))
	for year, n := range counts {
		trend = append(trend, models.YearCount{Year: year, Count: n})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Year < trend[j].Year })
	return trend, nil
}

// CorrelationMatrix computes pairwise Pearson correlation over the numeric
// columns of df, restricted to cols when non-empty. Requested columns must
// exist; a table with no numeric columns yields an empty matrix, not an
// error.
func (a *Analyzer) CorrelationMatrix(df dataframe.DataFrame, cols []string) (models.CorrMatrix, error) {
	candidates := cols
	if len(candidates) == 0 {
		candidates = df.Names()
	} else {
		for _, col := range candidates {
			if !hasColumn(df, col) {
				return models.CorrMatrix{}, fmt.Errorf("analyzer: column %q not found", col)
			}
		}
	}

	var numeric []string
	for _, col := range candidates {
		t := df.Col(col).Type()
		if t == series.Float || t == series.Int {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) == 0 {
		a.logger.Warn("[analyzer] No numeric columns available for correlation")
		return models.CorrMatrix{}, nil
	}

	data := make([][]float64, len(numeric))
	for i, col := range numeric {
		data[i] = df.Col(col).Float()
	}

	values := make([][]float64, len(numeric))
	for i := range numeric {
		values[i] = make([]float64, len(numeric))
		values[i][i] = 1
	}
	for i := 1; i < len(numeric); i++ {
		for j := 0; j < i; j++ {
			r := pearson(data[i], data[j])
			values[i][j] = r
			values[j][i] = r
		}
	}
	return models.CorrMatrix{Columns: numeric, Values: values}, nil
}

// pearson drops index pairs where either value is NaN before correlating.
func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// GroupedMetric groups df by groupCol and aggregates metricCol with aggFunc
// (mean when empty). Count is the only aggregation allowed on a non-numeric
// metric column; it counts non-missing values. Results sort by metric value,
// or by group key when sortByValue is false; ascending picks the direction.
func (a *Analyzer) GroupedMetric(df dataframe.DataFrame, groupCol, metricCol, aggFunc string, sortByValue, ascending bool) ([]models.GroupMetric, error) {
	if !hasColumn(df, groupCol) {
		return nil, fmt.Errorf("analyzer: group column %q not found", groupCol)
	}
	if !hasColumn(df, metricCol) {
		return nil, fmt.Errorf("analyzer: metric column %q not found", metricCol)
	}
	if aggFunc == "" {
		aggFunc = AggMean
	}

	metricType := df.Col(metricCol).Type()
	numeric := metricType == series.Float || metricType == series.Int
	if !numeric && aggFunc != AggCount {
		return nil, fmt.Errorf("analyzer: column %q must be numeric for aggregation %q, got type %s",
			metricCol, aggFunc, metricType)
	}

	type bucket struct {
		vals  []float64
		count int
	}
	buckets := make(map[string]*bucket)

	groups := df.Col(groupCol).Records()
	metricVals := df.Col(metricCol).Float()
	metricRecs := df.Col(metricCol).Records()

	for i, g := range groups {
		b := buckets[g]
		if b == nil {
			b = &bucket{}
			buckets[g] = b
		}
		if !missingRecord(metricRecs[i]) {
			b.count++
		}
		if !math.IsNaN(metricVals[i]) {
			b.vals = append(b.vals, metricVals[i])
		}
	}

	result := make([]models.GroupMetric, 0, len(buckets))
	for g, b := range buckets {
		var v float64
		switch aggFunc {
		case AggCount:
			v = float64(b.count)
		case AggMean, AggSum, AggMin, AggMax, AggMedian:
			if len(b.vals) == 0 {
				v = math.NaN()
				break
			}
			v = aggregate(aggFunc, b.vals)
		default:
			return nil, fmt.Errorf("analyzer: unsupported aggregation %q", aggFunc)
		}
		result = append(result, models.GroupMetric{Group: g, Value: v})
	}

	sort.Slice(result, func(i, j int) bool {
		x, y := result[i], result[j]
		if !ascending {
			x, y = y, x
		}
		if sortByValue && x.Value != y.Value {
			return x.Value < y.Value
		}
		return x.Group < y.Group
	})
	return result, nil
}

func aggregate(aggFunc string, vals []float64) float64 {
	switch aggFunc {
	case AggMean:
		return stat.Mean(vals, nil)
	case AggSum:
		return floats.Sum(vals)
	case AggMin:
		return floats.Min(vals)
	case AggMax:
		return floats.Max(vals)
	case AggMedian:
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return math.NaN()
}

// ValueCounts returns the frequency of each distinct value of col, most
// frequent first with a value-ascending tiebreak. With sortByValue the
// result orders by the value itself instead.
func (a *Analyzer) ValueCounts(df dataframe.DataFrame, col string, sortByValue bool) ([]models.ValueCount, error) {
	if !hasColumn(df, col) {
		return nil, fmt.Errorf("analyzer: column %q not found", col)
	}

	counts := make(map[string]int)
	for _, rec := range df.Col(col).Records() {
		counts[rec]++
	}

	result := make([]models.ValueCount, 0, len(counts))
	for v, n := range counts {
		result = append(result, models.ValueCount{Value: v, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if sortByValue {
			return result[i].Value < result[j].Value
		}
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Value < result[j].Value
	})
	return result, nil
}
