package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sensordash/internal/config"
	"sensordash/internal/modules/sensor/ingest"
	"sensordash/internal/modules/sensor/types"
	"sensordash/internal/modules/sensor/views"
)

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) RefreshNow() { f.calls++ }

func testConfig() config.Config {
	return config.Config{
		RefreshInterval:     5 * time.Second,
		MaxWindowPoints:     3,
		ItemsPerPage:        2,
		ForecastHorizonDays: 2,
	}
}

func newTestMux(t *testing.T, readings []types.Reading) (*http.ServeMux, *fakeRefresher) {
	t.Helper()
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	store := ingest.NewStore()
	if len(readings) > 0 {
		st, _, err := ingest.Ingest(nil, readings)
		if err != nil {
			t.Fatalf("Ingest(): %v", err)
		}
		store.Swap(st, true)
	}

	refresher := &fakeRefresher{}
	mux := http.NewServeMux()
	NewSensorController(store, refresher, testConfig()).RegisterRoutes(mux)
	return mux, refresher
}

func twoDays() []types.Reading {
	return []types.Reading{
		{Date: "2024-01-01", Time: "08:00:00", Temperature: 18, Humidity: 55, Location: "attic"},
		{Date: "2024-01-01", Time: "14:00:00", Temperature: 22, Humidity: 48, Location: "lab"},
		{Date: "2024-01-02", Time: "08:00:00", Temperature: 17, Humidity: 60, Location: "lab"},
		{Date: "2024-01-02", Time: "20:00:00", Temperature: 19, Humidity: 52, Location: "attic"},
	}
}

func TestHandleDashboard(t *testing.T) {
	mux, _ := newTestMux(t, twoDays())

	t.Run("root serves the page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("Content-Type = %q, want text/html", ct)
		}
		if !strings.Contains(rec.Body.String(), "Sensor Dashboard") {
			t.Errorf("body missing page title")
		}
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandleChartPartial(t *testing.T) {
	mux, _ := newTestMux(t, twoDays())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/partials/chart", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Incoming Data: On") {
		t.Errorf("body missing incoming-data indicator: %q", body)
	}
	// Window of 3: the earliest of the four readings is excluded.
	if strings.Contains(body, "2024-01-01 08:00:00") {
		t.Errorf("body contains reading outside the recent window")
	}
	if !strings.Contains(body, "2024-01-02 20:00:00") {
		t.Errorf("body missing the latest reading")
	}
}

func TestHandleHistoryPartial(t *testing.T) {
	mux, _ := newTestMux(t, twoDays())

	t.Run("paginates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/partials/history?page=2", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		// 4 readings, 2 per page: page 2 shows rows 3-4.
		if !strings.Contains(rec.Body.String(), "3&ndash;4 of 4") {
			t.Errorf("body missing range summary: %q", rec.Body.String())
		}
	})

	t.Run("invalid filter is 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/partials/history?date=nonsense", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlePredictionsPartial_Insufficient(t *testing.T) {
	mux, _ := newTestMux(t, []types.Reading{
		{Date: "2024-01-01", Time: "08:00:00", Temperature: 18, Humidity: 55},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/partials/predictions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with insufficient-data message", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not enough data") {
		t.Errorf("body missing insufficient message: %q", rec.Body.String())
	}
}

func TestHandleChart(t *testing.T) {
	mux, _ := newTestMux(t, twoDays())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/chart", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Labels      []string  `json:"labels"`
		Temperature []float64 `json:"temperature"`
		Humidity    []float64 `json:"humidity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Labels) != 3 {
		t.Fatalf("labels = %v, want the 3 most recent points", body.Labels)
	}
	if body.Labels[2] != "2024-01-02 20:00:00" {
		t.Errorf("last label = %q, want latest reading", body.Labels[2])
	}
	if body.Temperature[2] != 19 || body.Humidity[2] != 52 {
		t.Errorf("last point = (%v, %v), want (19, 52)", body.Temperature[2], body.Humidity[2])
	}
}

func TestHandleReadings(t *testing.T) {
	mux, _ := newTestMux(t, twoDays())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/readings?sort=temperature&order=desc", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Readings []types.Reading `json:"readings"`
		Meta     struct {
			CurrentPage int `json:"currentPage"`
			TotalPages  int `json:"totalPages"`
			TotalCount  int `json:"totalCount"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Meta.TotalCount != 4 || body.Meta.TotalPages != 2 {
		t.Errorf("meta = %+v, want totalCount 4 over 2 pages", body.Meta)
	}
	if len(body.Readings) != 2 || body.Readings[0].Temperature != 22 {
		t.Errorf("readings = %v, want first page of descending temperatures", body.Readings)
	}
}

func TestHandleReadings_BadQuery(t *testing.T) {
	mux, _ := newTestMux(t, twoDays())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/readings?order=sideways", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlePredictions(t *testing.T) {
	t.Run("two days of data", func(t *testing.T) {
		mux, _ := newTestMux(t, twoDays())

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/predictions", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var body struct {
			Predictions []types.Prediction `json:"predictions"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(body.Predictions) != 2 {
			t.Fatalf("predictions = %v, want horizon of 2", body.Predictions)
		}
		if body.Predictions[0].Date != "2024-01-03" {
			t.Errorf("first prediction date = %q, want day after last reading", body.Predictions[0].Date)
		}
	})

	t.Run("insufficient history is 422", func(t *testing.T) {
		mux, _ := newTestMux(t, []types.Reading{
			{Date: "2024-01-01", Time: "08:00:00", Temperature: 18, Humidity: 55},
		})

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/predictions", nil))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})
}

func TestHandleExport(t *testing.T) {
	mux, _ := newTestMux(t, twoDays())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/export.csv?date=2024-01-01", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "readings.csv") {
		t.Errorf("Content-Disposition = %q, want attachment filename", cd)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	// Header plus the two rows from 2024-01-01; export never paginates.
	if len(lines) != 3 {
		t.Fatalf("export has %d lines, want 3:\n%s", len(lines), rec.Body.String())
	}
	if lines[0] != `"Date","Time","Temperature","Humidity","Location"` {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], `"2024-01-01"`) {
		t.Errorf("row = %q, want filtered date", lines[1])
	}
}

func TestHandleRefresh(t *testing.T) {
	mux, refresher := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/refresh", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if refresher.calls != 1 {
		t.Errorf("RefreshNow called %d times, want 1", refresher.calls)
	}
	if !strings.Contains(rec.Body.String(), "refresh queued") {
		t.Errorf("body = %q, want refresh queued", rec.Body.String())
	}
}
