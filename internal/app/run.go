package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"sensordash/internal/config"
	"sensordash/internal/db"
	"sensordash/internal/httpapi"
	"sensordash/internal/modules/sensor"
	"sensordash/internal/modules/sensor/fetch"
	"sensordash/internal/modules/sensor/ingest"
	"sensordash/internal/modules/sensor/repository"
	"sensordash/internal/modules/sensor/service"
	"sensordash/internal/modules/sensor/views"
	"sensordash/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sourceURL", cfg.SourceURL,
		"columnMode", cfg.ColumnMode,
		"refreshInterval", cfg.RefreshInterval,
		"maxWindowPoints", cfg.MaxWindowPoints,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"mqttEnabled", cfg.MQTTEnabled,
		"mqttBroker", cfg.MQTTBroker,
		"mqttTopic", cfg.MQTTTopic,
	)

	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := db.Migrate(dbConn); err != nil {
		return err
	}

	var ok int
	if err := dbConn.QueryRow(`SELECT 1`).Scan(&ok); err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	slog.Info("database connection successful")

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	store := ingest.NewStore()
	repo := repository.NewRepository(dbConn)

	// Warm start: seed the store from archived readings so the dashboard has
	// history before the first fetch cycle completes.
	archived, err := repo.LoadReadings()
	if err != nil {
		slog.Warn("load archived readings failed (starting empty)", "error", err)
	} else if len(archived) > 0 {
		seeded, _, err := ingest.Ingest(nil, archived)
		if err != nil {
			slog.Warn("seed archived readings failed (starting empty)", "error", err)
		} else {
			store.Seed(seeded)
			slog.Info("store warm-started from archive", "readings", seeded.Len())
		}
	}

	var publisher *mqtt.Publisher
	var readingPublisher service.ReadingPublisher
	if cfg.MQTTEnabled {
		publisher = mqtt.NewPublisher(cfg, slog.Default())
		// Short timeout for initial connect so a down broker never blocks
		// startup; the client keeps retrying in the background.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := publisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
		readingPublisher = publisher
	}

	fetcher := fetch.NewClient(cfg.FetchTimeout)
	svc := service.New(cfg, fetcher, store, repo, readingPublisher, slog.Default())

	mux := httpapi.NewMux(dbConn)
	sensor.RegisterFeature(mux, store, svc, cfg)

	go func() {
		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("poll loop stopped", "error", err)
		}
	}()

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if publisher != nil {
		slog.Info("mqtt disconnecting")
		publisher.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
