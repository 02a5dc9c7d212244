package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// SourceURL is the published-spreadsheet CSV endpoint polled for readings.
	SourceURL string
	// ColumnMode selects how CSV columns are resolved: "header" matches the
	// header row by name, "positional" assumes date,time,temp,hum[,location].
	ColumnMode          string
	RefreshInterval     time.Duration
	FetchTimeout        time.Duration
	MaxWindowPoints     int
	ItemsPerPage        int
	ForecastHorizonDays int

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration

	MQTTEnabled  bool
	MQTTBroker   string
	MQTTPort     int
	MQTTTopic    string
	MQTTClientID string
}

const (
	ColumnModeHeader     = "header"
	ColumnModePositional = "positional"
)

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	sourceURL := strings.TrimSpace(os.Getenv("SOURCE_URL"))
	if sourceURL == "" {
		return Config{}, fmt.Errorf("SOURCE_URL is required")
	}

	columnMode := strings.TrimSpace(os.Getenv("COLUMN_MODE"))
	if columnMode == "" {
		columnMode = ColumnModeHeader
	}
	switch columnMode {
	case ColumnModeHeader, ColumnModePositional:
	default:
		return Config{}, fmt.Errorf("invalid COLUMN_MODE %q (allowed: header, positional)", columnMode)
	}

	refreshInterval, err := durationEnv("REFRESH_INTERVAL", "5s")
	if err != nil {
		return Config{}, err
	}
	if refreshInterval <= 0 {
		return Config{}, fmt.Errorf("REFRESH_INTERVAL must be > 0, got %s", refreshInterval)
	}

	fetchTimeout, err := durationEnv("FETCH_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	if fetchTimeout <= 0 {
		return Config{}, fmt.Errorf("FETCH_TIMEOUT must be > 0, got %s", fetchTimeout)
	}

	maxWindowPoints, err := intEnv("MAX_WINDOW_POINTS", "10")
	if err != nil {
		return Config{}, err
	}
	if maxWindowPoints <= 0 {
		return Config{}, fmt.Errorf("MAX_WINDOW_POINTS must be > 0, got %d", maxWindowPoints)
	}

	itemsPerPage, err := intEnv("ITEMS_PER_PAGE", "50")
	if err != nil {
		return Config{}, err
	}
	if itemsPerPage <= 0 {
		return Config{}, fmt.Errorf("ITEMS_PER_PAGE must be > 0, got %d", itemsPerPage)
	}

	forecastHorizonDays, err := intEnv("FORECAST_HORIZON_DAYS", "7")
	if err != nil {
		return Config{}, err
	}
	if forecastHorizonDays <= 0 {
		return Config{}, fmt.Errorf("FORECAST_HORIZON_DAYS must be > 0, got %d", forecastHorizonDays)
	}

	sqliteDriver := strings.TrimSpace(os.Getenv("SQLITE_DRIVER"))
	if sqliteDriver == "" {
		sqliteDriver = "sqlite3"
	}
	sqliteDSN := strings.TrimSpace(os.Getenv("SQLITE_DSN"))
	sqlitePath := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if sqlitePath == "" {
		sqlitePath = "data/sensordash.db"
	}

	sqliteMaxOpenConns, err := intEnv("SQLITE_MAX_OPEN_CONNS", "1")
	if err != nil {
		return Config{}, err
	}
	sqliteMaxIdleConns, err := intEnv("SQLITE_MAX_IDLE_CONNS", "1")
	if err != nil {
		return Config{}, err
	}
	sqliteConnMaxLifetime, err := durationEnv("SQLITE_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return Config{}, err
	}

	mqttEnabledStr := strings.TrimSpace(os.Getenv("MQTT_ENABLED"))
	if mqttEnabledStr == "" {
		mqttEnabledStr = "false"
	}
	mqttEnabled, err := strconv.ParseBool(mqttEnabledStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_ENABLED %q: %w", mqttEnabledStr, err)
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "localhost"
	}
	mqttPort, err := intEnv("MQTT_PORT", "1883")
	if err != nil {
		return Config{}, err
	}
	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "sensordash/readings"
	}
	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "sensordash-server"
	}

	return Config{
		AppEnv:              appEnv,
		LogLevel:            level,
		HTTPAddr:            httpAddr,
		SourceURL:           sourceURL,
		ColumnMode:          columnMode,
		RefreshInterval:     refreshInterval,
		FetchTimeout:        fetchTimeout,
		MaxWindowPoints:     maxWindowPoints,
		ItemsPerPage:        itemsPerPage,
		ForecastHorizonDays: forecastHorizonDays,

		SQLiteDriver:          sqliteDriver,
		SQLiteDSN:             sqliteDSN,
		SQLitePath:            sqlitePath,
		SQLiteMaxOpenConns:    sqliteMaxOpenConns,
		SQLiteMaxIdleConns:    sqliteMaxIdleConns,
		SQLiteConnMaxLifetime: sqliteConnMaxLifetime,

		MQTTEnabled:  mqttEnabled,
		MQTTBroker:   mqttBroker,
		MQTTPort:     mqttPort,
		MQTTTopic:    mqttTopic,
		MQTTClientID: mqttClientID,
	}, nil
}

func intEnv(name, fallback string) (int, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		s = fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return n, nil
}

func durationEnv(name, fallback string) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		s = fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
