package forecast

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sensordash/internal/modules/sensor/types"
)

func TestDailyAverages(t *testing.T) {
	readings := []types.Reading{
		{Date: "2024-01-02", Time: "09:00:00", Temperature: 12, Humidity: 62},
		{Date: "2024-01-01", Time: "09:00:00", Temperature: 10, Humidity: 40},
		{Date: "2024-01-01", Time: "15:00:00", Temperature: 20, Humidity: 60},
	}

	got := DailyAverages(readings)
	want := []types.DailyAverage{
		{Date: "2024-01-01", Temperature: 15, Humidity: 50},
		{Date: "2024-01-02", Temperature: 12, Humidity: 62},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DailyAverages mismatch (-want +got):\n%s", diff)
	}
}

func TestDailyAverages_Empty(t *testing.T) {
	if got := DailyAverages(nil); len(got) != 0 {
		t.Errorf("DailyAverages(nil) = %v, want empty", got)
	}
}

func TestForecast_LinearTrend(t *testing.T) {
	averages := []types.DailyAverage{
		{Date: "2024-01-01", Temperature: 10, Humidity: 40},
		{Date: "2024-01-02", Temperature: 20, Humidity: 50},
	}

	got, err := Forecast(averages, 2)
	if err != nil {
		t.Fatalf("Forecast() error = %v, want nil", err)
	}
	want := []types.Prediction{
		{Date: "2024-01-03", Temperature: 30, Humidity: 60},
		{Date: "2024-01-04", Temperature: 40, Humidity: 70},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Forecast mismatch (-want +got):\n%s", diff)
	}
}

func TestForecast_DaySpanDivisor(t *testing.T) {
	// Three days between endpoints, only two observed days: the per-day trend
	// divides by the real calendar span, not the number of entries.
	averages := []types.DailyAverage{
		{Date: "2024-01-01", Temperature: 10, Humidity: 50},
		{Date: "2024-01-04", Temperature: 16, Humidity: 50},
	}

	got, err := Forecast(averages, 1)
	if err != nil {
		t.Fatalf("Forecast() error = %v, want nil", err)
	}
	if got[0].Date != "2024-01-05" {
		t.Errorf("prediction date = %q, want %q", got[0].Date, "2024-01-05")
	}
	if got[0].Temperature != 18 {
		t.Errorf("predicted temperature = %v, want 18 (trend of 2 per day)", got[0].Temperature)
	}
}

func TestForecast_Clamps(t *testing.T) {
	t.Run("temperature floored at zero", func(t *testing.T) {
		averages := []types.DailyAverage{
			{Date: "2024-01-01", Temperature: 10, Humidity: 50},
			{Date: "2024-01-02", Temperature: 2, Humidity: 50},
		}
		got, err := Forecast(averages, 2)
		if err != nil {
			t.Fatalf("Forecast() error = %v", err)
		}
		if got[1].Temperature != 0 {
			t.Errorf("day-2 temperature = %v, want clamped to 0", got[1].Temperature)
		}
	})

	t.Run("humidity clamped to 100", func(t *testing.T) {
		averages := []types.DailyAverage{
			{Date: "2024-01-01", Temperature: 20, Humidity: 60},
			{Date: "2024-01-02", Temperature: 20, Humidity: 90},
		}
		got, err := Forecast(averages, 2)
		if err != nil {
			t.Fatalf("Forecast() error = %v", err)
		}
		if got[1].Humidity != 100 {
			t.Errorf("day-2 humidity = %v, want clamped to 100", got[1].Humidity)
		}
	})

	t.Run("humidity floored at zero", func(t *testing.T) {
		averages := []types.DailyAverage{
			{Date: "2024-01-01", Temperature: 20, Humidity: 40},
			{Date: "2024-01-02", Temperature: 20, Humidity: 10},
		}
		got, err := Forecast(averages, 2)
		if err != nil {
			t.Fatalf("Forecast() error = %v", err)
		}
		if got[1].Humidity != 0 {
			t.Errorf("day-2 humidity = %v, want clamped to 0", got[1].Humidity)
		}
	})
}

func TestForecast_InsufficientHistory(t *testing.T) {
	tests := []struct {
		name     string
		averages []types.DailyAverage
	}{
		{name: "no days", averages: nil},
		{name: "single day", averages: []types.DailyAverage{{Date: "2024-01-01", Temperature: 10, Humidity: 50}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Forecast(tt.averages, 7)
			if !errors.Is(err, ErrInsufficientHistory) {
				t.Fatalf("Forecast() error = %v, want ErrInsufficientHistory", err)
			}
		})
	}
}
