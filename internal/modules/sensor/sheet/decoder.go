package sheet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"sensordash/internal/modules/sensor/types"
)

// ErrMissingColumns reports a header row that lacks one of the required
// date/time/temperature/humidity columns. It is a fetch-level failure, unlike
// per-row decode errors which only drop the row.
var ErrMissingColumns = errors.New("required columns missing from header")

// ColumnIndex maps Reading fields to field positions. Location is -1 when the
// source has no location column.
type ColumnIndex struct {
	Date        int
	Time        int
	Temperature int
	Humidity    int
	Location    int
}

// PositionalIndex is the fixed column order used when the source has no
// usable header: date, time, temperature, humidity, location.
func PositionalIndex() ColumnIndex {
	return ColumnIndex{Date: 0, Time: 1, Temperature: 2, Humidity: 3, Location: 4}
}

// ResolveHeader matches header names case-insensitively against the substring
// patterns "date", "time", "temp", "hum" and "loc". The first matching column
// wins. A missing location column is tolerated; any other miss returns
// ErrMissingColumns.
func ResolveHeader(fields []string) (ColumnIndex, error) {
	idx := ColumnIndex{Date: -1, Time: -1, Temperature: -1, Humidity: -1, Location: -1}
	for i, f := range fields {
		name := strings.ToLower(trimNoise(f))
		switch {
		case idx.Date < 0 && strings.Contains(name, "date"):
			idx.Date = i
		case idx.Time < 0 && strings.Contains(name, "time"):
			idx.Time = i
		case idx.Temperature < 0 && strings.Contains(name, "temp"):
			idx.Temperature = i
		case idx.Humidity < 0 && strings.Contains(name, "hum"):
			idx.Humidity = i
		case idx.Location < 0 && strings.Contains(name, "loc"):
			idx.Location = i
		}
	}
	if idx.Date < 0 || idx.Time < 0 || idx.Temperature < 0 || idx.Humidity < 0 {
		return ColumnIndex{}, fmt.Errorf("%w: got %v", ErrMissingColumns, fields)
	}
	return idx, nil
}

// DecodeRow maps parsed fields to a Reading, normalizing date and time and
// validating the numeric fields. An error rejects only this row; the caller
// continues with the rest of the batch.
func DecodeRow(fields []string, idx ColumnIndex) (types.Reading, error) {
	required := idx.Date
	for _, i := range []int{idx.Time, idx.Temperature, idx.Humidity} {
		if i > required {
			required = i
		}
	}
	if len(fields) <= required {
		return types.Reading{}, fmt.Errorf("row has %d fields, need at least %d", len(fields), required+1)
	}

	date, err := NormalizeDate(trimNoise(fields[idx.Date]))
	if err != nil {
		return types.Reading{}, err
	}
	tod, err := NormalizeTime(trimNoise(fields[idx.Time]))
	if err != nil {
		return types.Reading{}, err
	}
	temp, err := parseNumber("temperature", fields[idx.Temperature])
	if err != nil {
		return types.Reading{}, err
	}
	hum, err := parseNumber("humidity", fields[idx.Humidity])
	if err != nil {
		return types.Reading{}, err
	}

	var loc string
	if idx.Location >= 0 && idx.Location < len(fields) {
		loc = trimNoise(fields[idx.Location])
	}

	return types.Reading{
		Date:        date,
		Time:        tod,
		Temperature: temp,
		Humidity:    hum,
		Location:    loc,
	}, nil
}

// Slash- and dash-delimited dates are day-first: the sensor firmware writes
// DD/MM/YYYY. ISO and spelled-out locale dates also occur in older sheets.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
}

// NormalizeDate converts any accepted source date format to ISO "2006-01-02".
func NormalizeDate(s string) (string, error) {
	if s == "" {
		return "", errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// NormalizeTime converts any accepted time-of-day format to "15:04:05".
func NormalizeTime(s string) (string, error) {
	if s == "" {
		return "", errors.New("empty time")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", fmt.Errorf("unrecognized time %q", s)
}

// trimNoise strips surrounding whitespace and stray quote characters left by
// the exporter.
func trimNoise(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
}

func parseNumber(name, raw string) (float64, error) {
	s := strings.ReplaceAll(trimNoise(raw), ",", ".")
	if s == "" {
		return 0, fmt.Errorf("empty %s", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite %s %q", name, raw)
	}
	return v, nil
}
