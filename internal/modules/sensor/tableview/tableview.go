// Package tableview holds the pure transforms behind the history table:
// filtering, sorting, pagination and CSV export over the reconciled dataset.
// None of the functions mutate their input.
package tableview

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"sensordash/internal/modules/sensor/types"
)

type Column string

const (
	ColumnDate        Column = "date"
	ColumnTime        Column = "time"
	ColumnTemperature Column = "temperature"
	ColumnHumidity    Column = "humidity"
	ColumnLocation    Column = "location"
)

func ParseColumn(s string) (Column, error) {
	switch Column(strings.ToLower(strings.TrimSpace(s))) {
	case ColumnDate:
		return ColumnDate, nil
	case ColumnTime:
		return ColumnTime, nil
	case ColumnTemperature:
		return ColumnTemperature, nil
	case ColumnHumidity:
		return ColumnHumidity, nil
	case ColumnLocation:
		return ColumnLocation, nil
	default:
		return "", fmt.Errorf("unknown sort column %q", s)
	}
}

// FilterByDate keeps readings whose normalized date matches exactly.
func FilterByDate(readings []types.Reading, date string) []types.Reading {
	out := make([]types.Reading, 0, len(readings))
	for _, r := range readings {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

// FilterByHourRange keeps readings whose hour component falls in the
// inclusive [from,to] range. Callers pass 0 or 23 for an open bound. An
// inverted range yields no readings rather than an error.
func FilterByHourRange(readings []types.Reading, from, to int) []types.Reading {
	if from > to {
		return nil
	}
	out := make([]types.Reading, 0, len(readings))
	for _, r := range readings {
		h := hourOf(r.Time)
		if h >= from && h <= to {
			out = append(out, r)
		}
	}
	return out
}

func hourOf(t string) int {
	hh, _, ok := strings.Cut(t, ":")
	if !ok {
		return -1
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return -1
	}
	return h
}

// SortBy returns a sorted copy. Numeric columns compare numerically, text
// columns use locale-aware collation. The sort is stable, so ties keep their
// original relative order.
func SortBy(readings []types.Reading, col Column, descending bool) []types.Reading {
	out := make([]types.Reading, len(readings))
	copy(out, readings)

	c := collate.New(language.Und)
	less := func(a, b types.Reading) bool {
		switch col {
		case ColumnTemperature:
			return a.Temperature < b.Temperature
		case ColumnHumidity:
			return a.Humidity < b.Humidity
		case ColumnTime:
			return c.CompareString(a.Time, b.Time) < 0
		case ColumnLocation:
			return c.CompareString(a.Location, b.Location) < 0
		default:
			return c.CompareString(a.Date, b.Date) < 0
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// Page is the pagination metadata returned alongside a page slice.
// RangeStart/RangeEnd are 1-based positions into the filtered dataset, both 0
// when it is empty.
type Page struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	RangeStart  int `json:"rangeStart"`
	RangeEnd    int `json:"rangeEnd"`
	TotalCount  int `json:"totalCount"`
}

// Paginate slices out the 1-based page of size perPage. Out-of-range page
// requests clamp to the nearest valid page rather than erroring.
func Paginate(readings []types.Reading, page, perPage int) ([]types.Reading, Page) {
	total := len(readings)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	if start > total {
		start = total
	}

	meta := Page{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
	}
	if total > 0 {
		meta.RangeStart = start + 1
		meta.RangeEnd = end
	}
	return readings[start:end], meta
}

// WriteCSV serializes readings as quoted CSV with a fixed header line. Every
// field is quoted, matching the format the original sheet exporter produced.
func WriteCSV(w io.Writer, readings []types.Reading) error {
	if _, err := io.WriteString(w, `"Date","Time","Temperature","Humidity","Location"`+"\n"); err != nil {
		return err
	}
	for _, r := range readings {
		row := strings.Join([]string{
			quote(r.Date),
			quote(r.Time),
			quote(strconv.FormatFloat(r.Temperature, 'f', 1, 64)),
			quote(strconv.FormatFloat(r.Humidity, 'f', 1, 64)),
			quote(r.Location),
		}, ",")
		if _, err := io.WriteString(w, row+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
