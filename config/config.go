package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// ListingsURL is the dataset download URL. It has no default: when it is
	// empty and no cached file exists, the load stage fails with a
	// missing-argument error.
	ListingsURL string

	DataDir  string
	DataFile string
	PlotsDir string

	ChartTheme string
	MapStyle   string

	ForceDownload bool

	CSVOutputPath  string
	XLSXReportPath string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		ListingsURL: getEnv("LISTINGS_URL", ""),

		DataDir:  getEnv("DATA_DIR", "data"),
		DataFile: getEnv("DATA_FILE", "listings.csv.gz"),
		PlotsDir: getEnv("PLOTS_DIR", "plots"),

		ChartTheme: getEnv("CHART_THEME", "westeros"),
		MapStyle:   getEnv("MAP_STYLE", "open-street-map"),

		ForceDownload: getEnvBool("FORCE_DOWNLOAD", false),

		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", "./output/clean_listings.csv"),
		XLSXReportPath: getEnv("XLSX_REPORT_PATH", "./output/report.xlsx"),
	}
}

// DataPath returns the local cache path of the downloaded dataset.
func (c *Config) DataPath() string {
	return filepath.Join(c.DataDir, c.DataFile)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
