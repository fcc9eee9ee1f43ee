package plots

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// histogramBins is the number of equal-width buckets in the price histogram.
const histogramBins = 30

// Renderer writes one self-contained HTML chart file per call into outDir.
// It consumes tables and aggregate views; it never feeds data back into the
// pipeline.
type Renderer struct {
	outDir   string
	theme    string
	mapStyle string
	logger   *utils.Logger
}

// NewRenderer creates a Renderer. theme is an echarts theme name applied to
// every chart; mapStyle picks the page background of the geographic scatter.
func NewRenderer(outDir, theme, mapStyle string, logger *utils.Logger) *Renderer {
	return &Renderer{outDir: outDir, theme: theme, mapStyle: mapStyle, logger: logger}
}

func (r *Renderer) baseOptions(title string) []echarts.GlobalOpts {
	return []echarts.GlobalOpts{
		echarts.WithTitleOpts(opts.Title{Title: title}),
		echarts.WithInitializationOpts(opts.Initialization{Theme: r.theme, PageTitle: title}),
	}
}

type renderable interface {
	Render(w io.Writer) error
}

func (r *Renderer) write(name string, chart renderable) (string, error) {
	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return "", fmt.Errorf("plots: create output dir: %w", err)
	}
	path := filepath.Join(r.outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("plots: create %q: %w", path, err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return "", fmt.Errorf("plots: render %q: %w", path, err)
	}
	r.logger.Info("[plots] Wrote %s", path)
	return path, nil
}

// PriceHistogram renders a binned histogram of priceCol. When upperLimit is
// positive only prices strictly below the limit are included.
func (r *Renderer) PriceHistogram(df dataframe.DataFrame, priceCol string, upperLimit float64) (string, error) {
	vals, err := numericColumn(df, priceCol)
	if err != nil {
		return "", err
	}

	var prices []float64
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if upperLimit > 0 && v >= upperLimit {
			continue
		}
		prices = append(prices, v)
	}

	title := "Price distribution"
	name := "price_distribution_full.html"
	if upperLimit > 0 {
		title = fmt.Sprintf("Price distribution (below %.0f)", upperLimit)
		name = "price_distribution_filtered.html"
	}

	labels, counts := histogram(prices, histogramBins)
	data := make([]opts.BarData, len(counts))
	for i, n := range counts {
		data[i] = opts.BarData{Value: n}
	}

	bar := echarts.NewBar()
	bar.SetGlobalOptions(append(r.baseOptions(title),
		echarts.WithXAxisOpts(opts.XAxis{Name: priceCol}),
		echarts.WithYAxisOpts(opts.YAxis{Name: "frequency"}),
	)...)
	bar.SetXAxis(labels).AddSeries(priceCol, data)
	return r.write(name, bar)
}

// ReviewsByYear renders the yearly review trend as a bar chart.
func (r *Renderer) ReviewsByYear(trend []models.YearCount) (string, error) {
	if len(trend) == 0 {
		return "", fmt.Errorf("plots: empty review trend")
	}

	years := make([]string, len(trend))
	data := make([]opts.BarData, len(trend))
	for i, yc := range trend {
		years[i] = fmt.Sprintf("%d", yc.Year)
		data[i] = opts.BarData{Value: yc.Count}
	}

	bar := echarts.NewBar()
	bar.SetGlobalOptions(append(r.baseOptions("Reviews by year"),
		echarts.WithXAxisOpts(opts.XAxis{Name: "year"}),
		echarts.WithYAxisOpts(opts.YAxis{Name: "reviews"}),
	)...)
	bar.SetXAxis(years).AddSeries("reviews", data)
	return r.write("reviews_by_year.html", bar)
}

// CorrelationHeatmap renders a correlation matrix on category axes with a
// continuous color scale over [-1, 1].
func (r *Renderer) CorrelationHeatmap(m models.CorrMatrix) (string, error) {
	if m.Empty() {
		return "", fmt.Errorf("plots: empty correlation matrix")
	}

	var data []opts.HeatMapData
	for i := range m.Columns {
		for j := range m.Columns {
			v := m.Values[i][j]
			if math.IsNaN(v) {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, v}})
		}
	}

	hm := echarts.NewHeatMap()
	hm.SetGlobalOptions(append(r.baseOptions("Correlation heatmap"),
		echarts.WithXAxisOpts(opts.XAxis{Type: "category", Data: m.Columns}),
		echarts.WithYAxisOpts(opts.YAxis{Type: "category", Data: m.Columns}),
		echarts.WithVisualMapOpts(opts.VisualMap{Min: -1, Max: 1, Calculable: true}),
	)...)
	hm.AddSeries("correlation", data)
	return r.write("correlation_heatmap.html", hm)
}

// ValueCountsBar renders categorical frequency counts as a bar chart.
func (r *Renderer) ValueCountsBar(counts []models.ValueCount, title, xTitle, name string) (string, error) {
	if len(counts) == 0 {
		return "", fmt.Errorf("plots: empty value counts")
	}

	cats := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, vc := range counts {
		cats[i] = vc.Value
		data[i] = opts.BarData{Value: vc.Count}
	}

	bar := echarts.NewBar()
	bar.SetGlobalOptions(append(r.baseOptions(title),
		echarts.WithXAxisOpts(opts.XAxis{Name: xTitle}),
		echarts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)...)
	bar.SetXAxis(cats).AddSeries("count", data)
	return r.write(name, bar)
}

// GroupedMetricBar renders a grouped metric series as a bar chart.
func (r *Renderer) GroupedMetricBar(metrics []models.GroupMetric, title, xTitle, yTitle, name string) (string, error) {
	if len(metrics) == 0 {
		return "", fmt.Errorf("plots: empty grouped metric")
	}

	groups := make([]string, len(metrics))
	data := make([]opts.BarData, len(metrics))
	for i, gm := range metrics {
		groups[i] = gm.Group
		data[i] = opts.BarData{Value: gm.Value}
	}

	bar := echarts.NewBar()
	bar.SetGlobalOptions(append(r.baseOptions(title),
		echarts.WithXAxisOpts(opts.XAxis{Name: xTitle}),
		echarts.WithYAxisOpts(opts.YAxis{Name: yTitle}),
	)...)
	bar.SetXAxis(groups).AddSeries(yTitle, data)
	return r.write(name, bar)
}

// Scatter renders yCol against xCol on numeric axes, split into one series
// per category of colorCol when that column is present.
func (r *Renderer) Scatter(df dataframe.DataFrame, xCol, yCol, colorCol, title, name string) (string, error) {
	xs, err := numericColumn(df, xCol)
	if err != nil {
		return "", err
	}
	ys, err := numericColumn(df, yCol)
	if err != nil {
		return "", err
	}

	sc := echarts.NewScatter()
	sc.SetGlobalOptions(append(r.baseOptions(title),
		echarts.WithXAxisOpts(opts.XAxis{Type: "value", Name: xCol}),
		echarts.WithYAxisOpts(opts.YAxis{Type: "value", Name: yCol}),
	)...)

	if colorCol != "" && hasColumn(df, colorCol) {
		groups := df.Col(colorCol).Records()
		byGroup := make(map[string][]opts.ScatterData)
		var order []string
		for i, g := range groups {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
				continue
			}
			if _, ok := byGroup[g]; !ok {
				order = append(order, g)
			}
			byGroup[g] = append(byGroup[g], opts.ScatterData{Value: []interface{}{xs[i], ys[i]}, SymbolSize: 6})
		}
		sort.Strings(order)
		for _, g := range order {
			sc.AddSeries(g, byGroup[g])
		}
	} else {
		var data []opts.ScatterData
		for i := range xs {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
				continue
			}
			data = append(data, opts.ScatterData{Value: []interface{}{xs[i], ys[i]}, SymbolSize: 6})
		}
		sc.AddSeries(yCol, data)
	}
	return r.write(name, sc)
}

// BoxPlot renders the five-number summary of yCol per category of xCol.
func (r *Renderer) BoxPlot(df dataframe.DataFrame, xCol, yCol, title, name string) (string, error) {
	if !hasColumn(df, xCol) {
		return "", fmt.Errorf("plots: column %q not found", xCol)
	}
	ys, err := numericColumn(df, yCol)
	if err != nil {
		return "", err
	}

	groups := df.Col(xCol).Records()
	byGroup := make(map[string][]float64)
	for i, g := range groups {
		if math.IsNaN(ys[i]) {
			continue
		}
		byGroup[g] = append(byGroup[g], ys[i])
	}
	if len(byGroup) == 0 {
		return "", fmt.Errorf("plots: no numeric %q values to plot", yCol)
	}

	cats := make([]string, 0, len(byGroup))
	for g := range byGroup {
		cats = append(cats, g)
	}
	sort.Strings(cats)

	data := make([]opts.BoxPlotData, 0, len(cats))
	for _, g := range cats {
		data = append(data, opts.BoxPlotData{Name: g, Value: fiveNumber(byGroup[g])})
	}

	bp := echarts.NewBoxPlot()
	bp.SetGlobalOptions(append(r.baseOptions(title),
		echarts.WithYAxisOpts(opts.YAxis{Name: yCol}),
	)...)
	bp.SetXAxis(cats).AddSeries(yCol, data)
	return r.write(name, bp)
}

// GeoScatter renders listings by coordinates on numeric axes, colored by
// colorCol through a continuous visual map. The geometry is plotted as-is;
// the configured map style only selects the page background.
func (r *Renderer) GeoScatter(gt *models.GeoTable, colorCol, title, name string) (string, error) {
	if gt == nil || gt.Nrow() == 0 {
		return "", fmt.Errorf("plots: empty geo table")
	}
	colors, err := numericColumn(gt.Table, colorCol)
	if err != nil {
		return "", err
	}

	var data []opts.ScatterData
	maxColor := 0.0
	for i, p := range gt.Geometry {
		if math.IsNaN(p.Lon()) || math.IsNaN(p.Lat()) || math.IsNaN(colors[i]) {
			continue
		}
		if colors[i] > maxColor {
			maxColor = colors[i]
		}
		data = append(data, opts.ScatterData{Value: []interface{}{p.Lon(), p.Lat(), colors[i]}, SymbolSize: 6})
	}
	if len(data) == 0 {
		return "", fmt.Errorf("plots: no plottable geometries")
	}

	background := ""
	if r.mapStyle == "dark" {
		background = "#100C2A"
	}

	sc := echarts.NewScatter()
	sc.SetGlobalOptions(
		echarts.WithTitleOpts(opts.Title{Title: title}),
		echarts.WithInitializationOpts(opts.Initialization{
			Theme:           r.theme,
			PageTitle:       title,
			BackgroundColor: background,
		}),
		echarts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "longitude", Scale: true}),
		echarts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "latitude", Scale: true}),
		echarts.WithVisualMapOpts(opts.VisualMap{Min: 0, Max: float32(maxColor), Calculable: true}),
	)
	sc.AddSeries(colorCol, data)
	return r.write(name, sc)
}

// numericColumn validates presence and numeric type, returning the values.
func numericColumn(df dataframe.DataFrame, col string) ([]float64, error) {
	if !hasColumn(df, col) {
		return nil, fmt.Errorf("plots: column %q not found", col)
	}
	t := df.Col(col).Type()
	if t != series.Float && t != series.Int {
		return nil, fmt.Errorf("plots: column %q must be numeric, got type %s", col, t)
	}
	return df.Col(col).Float(), nil
}

// histogram buckets vals into equal-width bins, returning range labels and
// per-bin counts.
func histogram(vals []float64, bins int) ([]string, []int) {
	if len(vals) == 0 {
		return nil, nil
	}
	min, max := floats.Min(vals), floats.Max(vals)
	if min == max {
		return []string{fmt.Sprintf("%.0f", min)}, []int{len(vals)}
	}

	width := (max - min) / float64(bins)
	counts := make([]int, bins)
	for _, v := range vals {
		i := int((v - min) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}

	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.0f-%.0f", min+float64(i)*width, min+float64(i+1)*width)
	}
	return labels, counts
}

// fiveNumber returns [min, q1, median, q3, max] for a box plot.
func fiveNumber(vals []float64) []float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return []float64{
		sorted[0],
		stat.Quantile(0.25, stat.Empirical, sorted, nil),
		stat.Quantile(0.5, stat.Empirical, sorted, nil),
		stat.Quantile(0.75, stat.Empirical, sorted, nil),
		sorted[len(sorted)-1],
	}
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
