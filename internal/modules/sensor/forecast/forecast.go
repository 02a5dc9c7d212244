// Package forecast derives daily averages and a short-horizon linear trend
// from the reconciled dataset. The trend is a two-point extrapolation between
// the first and last day's averages, not a regression; that matches the
// dashboard's intentionally simple prediction model.
package forecast

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"sensordash/internal/modules/sensor/types"
)

// ErrInsufficientHistory reports fewer than two distinct days of data, which
// is not enough to derive a trend. Surfaced to the user as a "not enough
// data" state, never a crash.
var ErrInsufficientHistory = errors.New("need at least 2 days of data")

// DailyAverages groups readings by calendar date and computes the arithmetic
// mean of temperature and humidity per group. The result is sorted ascending
// by date; only dates present in the input appear.
func DailyAverages(readings []types.Reading) []types.DailyAverage {
	type acc struct {
		tempSum float64
		humSum  float64
		n       int
	}
	byDate := make(map[string]*acc)
	for _, r := range readings {
		a := byDate[r.Date]
		if a == nil {
			a = &acc{}
			byDate[r.Date] = a
		}
		a.tempSum += r.Temperature
		a.humSum += r.Humidity
		a.n++
	}

	out := make([]types.DailyAverage, 0, len(byDate))
	for date, a := range byDate {
		out = append(out, types.DailyAverage{
			Date:        date,
			Temperature: a.tempSum / float64(a.n),
			Humidity:    a.humSum / float64(a.n),
		})
	}
	// Dates are normalized ISO, so lexicographic order is chronological.
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Forecast projects the two-endpoint daily trend forward horizonDays days
// past the last observed date. Predicted temperature is floored at 0 and
// predicted humidity is clamped to [0,100].
func Forecast(averages []types.DailyAverage, horizonDays int) ([]types.Prediction, error) {
	if len(averages) < 2 {
		return nil, ErrInsufficientHistory
	}

	first, last := averages[0], averages[len(averages)-1]
	firstDay, err := time.Parse("2006-01-02", first.Date)
	if err != nil {
		return nil, fmt.Errorf("parse first date %q: %w", first.Date, err)
	}
	lastDay, err := time.Parse("2006-01-02", last.Date)
	if err != nil {
		return nil, fmt.Errorf("parse last date %q: %w", last.Date, err)
	}

	daySpan := int(lastDay.Sub(firstDay).Hours() / 24)
	if daySpan <= 0 {
		// Two distinct ISO dates cannot span zero days, but a division by
		// zero here would poison every prediction, so treat it as no data.
		return nil, ErrInsufficientHistory
	}

	tempTrend := (last.Temperature - first.Temperature) / float64(daySpan)
	humTrend := (last.Humidity - first.Humidity) / float64(daySpan)

	predictions := make([]types.Prediction, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		temp := last.Temperature + tempTrend*float64(i)
		if temp < 0 {
			temp = 0
		}
		hum := last.Humidity + humTrend*float64(i)
		if hum < 0 {
			hum = 0
		}
		if hum > 100 {
			hum = 100
		}
		predictions = append(predictions, types.Prediction{
			Date:        lastDay.AddDate(0, 0, i).Format("2006-01-02"),
			Temperature: temp,
			Humidity:    hum,
		})
	}
	return predictions, nil
}
