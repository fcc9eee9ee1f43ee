package main

import (
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"

	"airbnb-analytics/config"
	"airbnb-analytics/loader"
	"airbnb-analytics/models"
	"airbnb-analytics/plots"
	"airbnb-analytics/services"
	"airbnb-analytics/storage"
	"airbnb-analytics/utils"
)

// priceCapForHistogram bounds the filtered price histogram so a handful of
// luxury outliers do not flatten the distribution.
const priceCapForHistogram = 500

// topNeighbourhoods limits the average-price bar chart to the priciest areas.
const topNeighbourhoods = 10

// correlationColumns are the numeric listing attributes correlated against
// each other, filtered to those present after cleaning.
var correlationColumns = []string{
	models.ColPrice,
	models.ColMinimumNights,
	models.ColNumberOfReviews,
	models.ColReviewsPerMonth,
}

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Airbnb Listings Analytics starting ===")
	logger.Info("Config — data: %s | plots: %s | theme: %s | force download: %t",
		cfg.DataPath(), cfg.PlotsDir, cfg.ChartTheme, cfg.ForceDownload)

	ld := loader.NewLoader(logger)
	df, err := ld.Fetch(cfg.ListingsURL, cfg.DataPath(), cfg.ForceDownload)
	if err != nil {
		logger.Error("Dataset load failed: %v", err)
		os.Exit(1)
	}
	if df.Nrow() == 0 {
		logger.Error("Dataset is empty. Exiting.")
		os.Exit(1)
	}

	cleaner := services.NewCleaner(logger)
	clean := cleaner.Clean(df)
	if clean.Nrow() == 0 {
		logger.Error("All rows were dropped during cleaning. Exiting.")
		os.Exit(1)
	}
	logger.Info("Cleaned dataset: %d listings", clean.Nrow())

	geocoder := services.NewGeocoder(logger)
	geo, err := geocoder.ToGeo(clean, models.ColLongitude, models.ColLatitude, models.DefaultCRS)
	if err != nil {
		logger.Warn("Geocoding skipped: %v", err)
		geo = nil
	}

	analyzer := services.NewAnalyzer(logger)

	trend, err := analyzer.ReviewTrends(clean, models.ColLastReview)
	if err != nil {
		logger.Warn("Review trend skipped: %v", err)
	}

	corr, err := analyzer.CorrelationMatrix(clean, presentColumns(clean, correlationColumns))
	if err != nil {
		logger.Warn("Correlation skipped: %v", err)
	}

	avgPrice, err := analyzer.GroupedMetric(clean, models.ColNeighbourhood, models.ColPrice,
		services.AggMean, true, false)
	if err != nil {
		logger.Warn("Neighbourhood price aggregation skipped: %v", err)
	}
	if len(avgPrice) > topNeighbourhoods {
		avgPrice = avgPrice[:topNeighbourhoods]
	}

	roomTypes, err := analyzer.ValueCounts(clean, models.ColRoomType, false)
	if err != nil {
		logger.Warn("Room type counts skipped: %v", err)
	}

	renderCharts(cfg, logger, clean, geo, trend, corr, avgPrice, roomTypes)
	exportArtifacts(cfg, logger, clean, trend, corr, avgPrice, roomTypes)

	fmt.Printf("  Done. Clean CSV → %s | Report → %s | Charts → %s/\n\n",
		cfg.CSVOutputPath, cfg.XLSXReportPath, cfg.PlotsDir)
}

// renderCharts renders every chart it has data for; a single failed chart is
// logged and skipped rather than aborting the run.
func renderCharts(cfg *config.Config, logger *utils.Logger, clean dataframe.DataFrame,
	geo *models.GeoTable, trend []models.YearCount, corr models.CorrMatrix,
	avgPrice []models.GroupMetric, roomTypes []models.ValueCount) {

	renderer := plots.NewRenderer(cfg.PlotsDir, cfg.ChartTheme, cfg.MapStyle, logger)

	if _, err := renderer.PriceHistogram(clean, models.ColPrice, 0); err != nil {
		logger.Warn("Price histogram skipped: %v", err)
	}
	if _, err := renderer.PriceHistogram(clean, models.ColPrice, priceCapForHistogram); err != nil {
		logger.Warn("Filtered price histogram skipped: %v", err)
	}

	if len(trend) > 0 {
		if _, err := renderer.ReviewsByYear(trend); err != nil {
			logger.Warn("Review trend chart skipped: %v", err)
		}
	}

	if !corr.Empty() {
		if _, err := renderer.CorrelationHeatmap(corr); err != nil {
			logger.Warn("Correlation heatmap skipped: %v", err)
		}
	}

	if len(roomTypes) > 0 {
		if _, err := renderer.ValueCountsBar(roomTypes, "Listings by room type",
			"room type", "room_type_counts.html"); err != nil {
			logger.Warn("Room type chart skipped: %v", err)
		}
	}

	if len(avgPrice) > 0 {
		if _, err := renderer.GroupedMetricBar(avgPrice, "Average price by neighbourhood",
			"neighbourhood", "average price", "avg_price_by_neighbourhood.html"); err != nil {
			logger.Warn("Neighbourhood price chart skipped: %v", err)
		}
	}

	if _, err := renderer.Scatter(clean, models.ColNumberOfReviews, models.ColPrice,
		models.ColRoomType, "Price vs number of reviews", "price_vs_reviews.html"); err != nil {
		logger.Warn("Price/reviews scatter skipped: %v", err)
	}

	if _, err := renderer.BoxPlot(clean, models.ColRoomType, models.ColPrice,
		"Price by room type", "price_by_room_type_box.html"); err != nil {
		logger.Warn("Price box plot skipped: %v", err)
	}

	if geo != nil {
		if _, err := renderer.GeoScatter(geo, models.ColPrice,
			"Listing prices by location", "geo_price_distribution.html"); err != nil {
			logger.Warn("Geographic chart skipped: %v", err)
		}
	}
}

// exportArtifacts writes the cleaned table as CSV and the aggregate views as
// a multi-sheet workbook.
func exportArtifacts(cfg *config.Config, logger *utils.Logger, clean dataframe.DataFrame,
	trend []models.YearCount, corr models.CorrMatrix,
	avgPrice []models.GroupMetric, roomTypes []models.ValueCount) {

	csvWriter := storage.NewCSVWriter(cfg.CSVOutputPath, logger)
	if err := csvWriter.WriteTable(clean); err != nil {
		logger.Error("Clean CSV export failed: %v", err)
	}

	xlsx := storage.NewExcelWriter(cfg.XLSXReportPath, logger)
	defer xlsx.Close()

	if err := xlsx.WriteSummary(clean.Nrow(), clean.Ncol()); err != nil {
		logger.Warn("Summary sheet failed: %v", err)
	}
	if len(trend) > 0 {
		if err := xlsx.WriteReviewTrend(trend); err != nil {
			logger.Warn("Review trend sheet failed: %v", err)
		}
	}
	if !corr.Empty() {
		if err := xlsx.WriteCorrelation(corr); err != nil {
			logger.Warn("Correlation sheet failed: %v", err)
		}
	}
	if len(roomTypes) > 0 {
		if err := xlsx.WriteValueCounts("RoomTypes", roomTypes); err != nil {
			logger.Warn("Room types sheet failed: %v", err)
		}
	}
	if len(avgPrice) > 0 {
		if err := xlsx.WriteGroupedMetric("NeighbourhoodPrices", avgPrice); err != nil {
			logger.Warn("Neighbourhood prices sheet failed: %v", err)
		}
	}

	if err := xlsx.Save(); err != nil {
		logger.Error("Report export failed: %v", err)
	}
}

func presentColumns(df dataframe.DataFrame, cols []string) []string {
	names := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		names[n] = true
	}
	var present []string
	for _, col := range cols {
		if names[col] {
			present = append(present, col)
		}
	}
	return present
}
