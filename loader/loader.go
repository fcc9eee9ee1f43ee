package loader

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"airbnb-analytics/utils"
)

// downloadChunkSize is the buffer size used when streaming the HTTP body to disk.
const downloadChunkSize = 8192

// Loader downloads the listings dataset and loads it into a DataFrame,
// keeping a local copy so later runs can skip the network entirely.
type Loader struct {
	client *http.Client
	logger *utils.Logger
}

// NewLoader creates a Loader using the default HTTP client.
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{client: http.DefaultClient, logger: logger}
}

// Fetch returns the listings table, downloading it first when force is set or
// no local copy exists. The download replaces the local file only after the
// full body has been written, so a failed transfer never touches an existing
// copy, but it does abort the fetch. There is no retry or partial resume.
func (l *Loader) Fetch(url, localPath string, force bool) (dataframe.DataFrame, error) {
	_, statErr := os.Stat(localPath)
	cached := statErr == nil

	if force || !cached {
		if err := l.download(url, localPath); err != nil {
			return dataframe.DataFrame{}, err
		}
	} else {
		l.logger.Info("[loader] Using cached dataset at %s", localPath)
	}

	return l.readTable(localPath)
}

func (l *Loader) download(url, localPath string) error {
	if url == "" {
		return fmt.Errorf("loader: listings URL is required but empty")
	}

	l.logger.Info("[loader] Downloading dataset from %s", url)

	resp, err := l.client.Get(url)
	if err != nil {
		return fmt.Errorf("loader: get %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("loader: get %q: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("loader: create data dir: %w", err)
	}

	// Stream into a temp file and rename, so a mid-transfer failure cannot
	// leave a truncated dataset at localPath.
	tmp, err := os.CreateTemp(filepath.Dir(localPath), filepath.Base(localPath)+".partial-*")
	if err != nil {
		return fmt.Errorf("loader: create temp file: %w", err)
	}

	buf := make([]byte, downloadChunkSize)
	if _, err := io.CopyBuffer(tmp, resp.Body, buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("loader: write %q: %w", localPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("loader: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), localPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("loader: replace %q: %w", localPath, err)
	}

	l.logger.Info("[loader] Dataset saved to %s", localPath)
	return nil
}

// readTable parses the (optionally gzipped) delimited file into a DataFrame.
// The first row is the header; cells keep their string form so the cleaner
// controls all type coercion.
func (l *Loader) readTable(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("loader: open %q: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("loader: gzip %q: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("loader: parse %q: %w", path, df.Err)
	}

	l.logger.Info("[loader] Loaded %d rows, %d columns", df.Nrow(), df.Ncol())
	return df, nil
}
