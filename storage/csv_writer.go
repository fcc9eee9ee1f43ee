package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"

	"airbnb-analytics/utils"
)

// CSVWriter writes a listings table to a single CSV file, creating parent
// directories as needed. Each WriteTable call truncates and rewrites the file.
type CSVWriter struct {
	path   string
	logger *utils.Logger
}

// NewCSVWriter creates a CSVWriter targeting path.
func NewCSVWriter(path string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{path: path, logger: logger}
}

// WriteTable persists df to the configured path.
func (w *CSVWriter) WriteTable(df dataframe.DataFrame) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("storage: create output dir: %w", err)
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("storage: create %q: %w", w.path, err)
	}
	defer f.Close()

	if err := df.WriteCSV(f); err != nil {
		return fmt.Errorf("storage: write %q: %w", w.path, err)
	}

	w.logger.Info("[storage] Wrote %d rows to %s", df.Nrow(), w.path)
	return nil
}

// Close is a no-op; the file is closed after each write.
func (w *CSVWriter) Close() error {
	return nil
}
