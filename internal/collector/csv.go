package collector

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"NoteValuator/internal/model"

	"github.com/gocarina/gocsv"
)

// DefaultDateLayout is the date format expected in CSV exports.
const DefaultDateLayout = "2006-01-02"

// CSVFetcher reads a Date,Price export of the underlying's history.
// The symbol argument is ignored; the file holds a single series.
type CSVFetcher struct {
	Path       string
	DateLayout string
}

// NewCSVFetcher creates a CSV fetcher. An empty layout selects DefaultDateLayout.
func NewCSVFetcher(path, dateLayout string) *CSVFetcher {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	return &CSVFetcher{Path: path, DateLayout: dateLayout}
}

func (f *CSVFetcher) Name() string { return "csv" }

type csvRow struct {
	Date  string `csv:"Date"`
	Price string `csv:"Price"`
}

// FetchHistory parses every row and keeps those inside the window. A row with
// an unparseable date or price fails the whole load.
func (f *CSVFetcher) FetchHistory(ctx context.Context, _ string, from, to time.Time) (History, error) {
	if err := ctx.Err(); err != nil {
		return History{}, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return History{}, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	var rows []*csvRow
	if err := gocsv.Unmarshal(file, &rows); err != nil {
		return History{}, fmt.Errorf("parse csv %s: %w", f.Path, err)
	}

	points := make([]model.PricePoint, 0, len(rows))
	for i, row := range rows {
		// header is line 1
		line := i + 2
		t, err := time.Parse(f.DateLayout, strings.TrimSpace(row.Date))
		if err != nil {
			return History{}, fmt.Errorf("%w: line %d: date %q: %v", model.ErrInvalidRecord, line, row.Date, err)
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row.Price), ",", ""), 64)
		if err != nil {
			return History{}, fmt.Errorf("%w: line %d: price %q is not numeric", model.ErrInvalidPrice, line, row.Price)
		}
		if !inWindow(t, from, to) {
			continue
		}
		points = append(points, model.PricePoint{Time: t, Price: price})
	}
	return History{Points: points}, nil
}
