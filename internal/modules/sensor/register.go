package sensor

import (
	"net/http"

	"sensordash/internal/config"
	"sensordash/internal/modules/sensor/controller"
	"sensordash/internal/modules/sensor/ingest"
	"sensordash/internal/modules/sensor/service"
)

func RegisterFeature(mux *http.ServeMux, store *ingest.Store, svc *service.Service, cfg config.Config) {
	sensorController := controller.NewSensorController(store, svc, cfg)
	sensorController.RegisterRoutes(mux)
}
