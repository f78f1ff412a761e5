package engagement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	errs "github.com/matzehuels/storeweaver/pkg/errors"
)

// Defaults used when a metric is missing from the CSV.
const (
	DefaultDwellTimeSeconds = 120.0
	DefaultConversionRate   = 5.0
	DefaultScrollDepth      = 70.0
)

// StoreMetrics are the analytics of one store page.
type StoreMetrics struct {
	StoreID            string  `json:"store_id"`
	BrandName          string  `json:"brand_name"`
	ScreenshotFilename string  `json:"screenshot_filename"`
	AvgDwellTime       float64 `json:"avg_dwell_time_seconds"`
	BounceRate         float64 `json:"bounce_rate_percentage"`
	SalesPerVisit      float64 `json:"sales_per_visit"`
	ConversionRate     float64 `json:"conversion_rate_percentage"`
	AvgScrollDepth     float64 `json:"avg_scroll_depth_percentage"`
}

// Metrics maps screenshot filenames to store metrics.
type Metrics map[string]StoreMetrics

// CSV column names.
const (
	colStoreID    = "store_id"
	colBrand      = "brand_name"
	colScreenshot = "screenshot_filename"
	colDwell      = "avg_dwell_time_seconds"
	colBounce     = "bounce_rate_percentage"
	colSales      = "sales_per_visit_inr"
	colConversion = "conversion_rate_percentage"
	colScroll     = "avg_scroll_depth_percentage"
)

// ReadMetricsFile reads a performance_data.csv file.
func ReadMetricsFile(path string) (Metrics, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNotFound, err, "open metrics %s", path)
	}
	defer f.Close()
	return ReadMetricsCSV(f)
}

// ReadMetricsCSV parses store metrics. Columns are matched by header name
// and may appear in any order; only screenshot_filename is required.
// Unknown columns are ignored and missing numeric columns take their
// defaults. The first row wins when a screenshot appears twice.
func ReadMetricsCSV(r io.Reader) (Metrics, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read metrics header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	if _, ok := cols[colScreenshot]; !ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "metrics CSV has no %s column", colScreenshot)
	}

	out := make(Metrics)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read metrics")
		}

		row := csvRow{rec: rec, cols: cols}
		m := StoreMetrics{
			StoreID:            row.str(colStoreID),
			BrandName:          row.str(colBrand),
			ScreenshotFilename: row.str(colScreenshot),
		}
		if m.ScreenshotFilename == "" {
			continue
		}
		if m.AvgDwellTime, err = row.num(colDwell, DefaultDwellTimeSeconds); err != nil {
			return nil, lineError(line, err)
		}
		if m.BounceRate, err = row.num(colBounce, 0); err != nil {
			return nil, lineError(line, err)
		}
		if m.SalesPerVisit, err = row.num(colSales, 0); err != nil {
			return nil, lineError(line, err)
		}
		if m.ConversionRate, err = row.num(colConversion, DefaultConversionRate); err != nil {
			return nil, lineError(line, err)
		}
		if m.AvgScrollDepth, err = row.num(colScroll, DefaultScrollDepth); err != nil {
			return nil, lineError(line, err)
		}
		if _, dup := out[m.ScreenshotFilename]; !dup {
			out[m.ScreenshotFilename] = m
		}
	}
	return out, nil
}

type csvRow struct {
	rec  []string
	cols map[string]int
}

func (r csvRow) str(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r csvRow) num(col string, def float64) (float64, error) {
	s := r.str(col)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	return v, nil
}

func lineError(line int, err error) error {
	return errs.Wrap(errs.ErrCodeInvalidInput, err, "metrics line %d", line)
}
