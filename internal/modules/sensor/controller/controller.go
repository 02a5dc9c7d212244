package controller

import (
	"net/http"

	"sensordash/internal/config"
	"sensordash/internal/modules/sensor/ingest"
)

// refresher queues an out-of-band fetch cycle.
type refresher interface {
	RefreshNow()
}

type SensorController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type sensorControllerImpl struct {
	store     *ingest.Store
	refresher refresher
	cfg       config.Config
}

func NewSensorController(store *ingest.Store, r refresher, cfg config.Config) SensorController {
	return &sensorControllerImpl{store: store, refresher: r, cfg: cfg}
}

func (c *sensorControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /partials/chart", c.handleChartPartial)
	mux.HandleFunc("GET /partials/history", c.handleHistoryPartial)
	mux.HandleFunc("GET /partials/predictions", c.handlePredictionsPartial)

	mux.HandleFunc("GET /api/v1/chart", c.handleChart)
	mux.HandleFunc("GET /api/v1/readings", c.handleReadings)
	mux.HandleFunc("GET /api/v1/predictions", c.handlePredictions)
	mux.HandleFunc("GET /api/v1/export.csv", c.handleExport)
	mux.HandleFunc("POST /api/v1/refresh", c.handleRefresh)
}
