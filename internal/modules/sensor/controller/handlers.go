package controller

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"sensordash/internal/modules/sensor/forecast"
	"sensordash/internal/modules/sensor/tableview"
	"sensordash/internal/modules/sensor/types"
	"sensordash/internal/modules/sensor/views"
	"sensordash/internal/utils"
)

func (c *sensorControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := views.DashboardData{
		RefreshIntervalMs: c.cfg.RefreshInterval.Milliseconds(),
		MaxWindowPoints:   c.cfg.MaxWindowPoints,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderDashboard(w, &data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
}

func (c *sensorControllerImpl) handleChartPartial(w http.ResponseWriter, r *http.Request) {
	state := c.store.Current()
	window := state.Recent(c.cfg.MaxWindowPoints)

	var current *types.Reading
	if len(window) > 0 {
		current = &window[len(window)-1]
	}

	data := views.ChartData{
		Status:   c.store.Status(),
		Current:  current,
		Readings: window,
	}
	var buf bytes.Buffer
	if err := views.RenderChartPartial(&buf, &data); err != nil {
		slog.Error("chart partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("chart: write response failed", "error", err)
	}
}

func (c *sensorControllerImpl) handleHistoryPartial(w http.ResponseWriter, r *http.Request) {
	q, err := parseTableQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := applyTableQuery(c.store.Current().Readings(), q)
	pageRows, meta := tableview.Paginate(rows, q.page, c.cfg.ItemsPerPage)

	fromHour, toHour := "", ""
	if q.hourFiltered {
		fromHour = r.URL.Query().Get("from_hour")
		toHour = r.URL.Query().Get("to_hour")
	}
	data := views.HistoryData{
		Readings: pageRows,

		Date:     q.date,
		FromHour: fromHour,
		ToHour:   toHour,
		Sort:     string(q.sort),
		Order:    r.URL.Query().Get("order"),

		CurrentPage: meta.CurrentPage,
		TotalPages:  meta.TotalPages,
		RangeStart:  meta.RangeStart,
		RangeEnd:    meta.RangeEnd,
		TotalCount:  meta.TotalCount,
		HasPrev:     meta.CurrentPage > 1,
		HasNext:     meta.CurrentPage < meta.TotalPages,
		PrevPage:    meta.CurrentPage - 1,
		NextPage:    meta.CurrentPage + 1,
		PageItems:   buildPageItems(meta.TotalPages, meta.CurrentPage),
	}
	var buf bytes.Buffer
	if err := views.RenderHistoryPartial(&buf, &data); err != nil {
		slog.Error("history partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("history: write response failed", "error", err)
	}
}

func (c *sensorControllerImpl) handlePredictionsPartial(w http.ResponseWriter, r *http.Request) {
	averages := forecast.DailyAverages(c.store.Current().Readings())
	predictions, err := forecast.Forecast(averages, c.cfg.ForecastHorizonDays)
	if err != nil && !errors.Is(err, forecast.ErrInsufficientHistory) {
		slog.Error("forecast failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to compute predictions")
		return
	}

	data := views.PredictionsData{
		Predictions:  predictions,
		Insufficient: errors.Is(err, forecast.ErrInsufficientHistory),
	}
	var buf bytes.Buffer
	if err := views.RenderPredictionsPartial(&buf, &data); err != nil {
		slog.Error("predictions partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("predictions: write response failed", "error", err)
	}
}

func (c *sensorControllerImpl) handleChart(w http.ResponseWriter, r *http.Request) {
	window := c.store.Current().Recent(c.cfg.MaxWindowPoints)

	labels := make([]string, 0, len(window))
	temps := make([]float64, 0, len(window))
	hums := make([]float64, 0, len(window))
	for _, rec := range window {
		labels = append(labels, rec.Key())
		temps = append(temps, rec.Temperature)
		hums = append(hums, rec.Humidity)
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"labels":      labels,
		"temperature": temps,
		"humidity":    hums,
	})
}

func (c *sensorControllerImpl) handleReadings(w http.ResponseWriter, r *http.Request) {
	q, err := parseTableQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := applyTableQuery(c.store.Current().Readings(), q)
	pageRows, meta := tableview.Paginate(rows, q.page, c.cfg.ItemsPerPage)

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"readings": pageRows,
		"meta":     meta,
	})
}

func (c *sensorControllerImpl) handlePredictions(w http.ResponseWriter, r *http.Request) {
	averages := forecast.DailyAverages(c.store.Current().Readings())
	predictions, err := forecast.Forecast(averages, c.cfg.ForecastHorizonDays)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientHistory) {
			utils.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("forecast failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to compute predictions")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"predictions": predictions})
}

func (c *sensorControllerImpl) handleExport(w http.ResponseWriter, r *http.Request) {
	q, err := parseTableQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := applyTableQuery(c.store.Current().Readings(), q)
	utils.WriteCSV(w, "readings.csv", func(out io.Writer) error {
		return tableview.WriteCSV(out, rows)
	})
}

func (c *sensorControllerImpl) handleRefresh(w http.ResponseWriter, r *http.Request) {
	c.refresher.RefreshNow()
	utils.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "refresh queued"})
}
