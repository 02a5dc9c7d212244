package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"

	"sensordash/internal/modules/sensor/ingest"
	"sensordash/internal/modules/sensor/types"
)

//go:embed templates
var viewsFS embed.FS

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// DashboardData is the view model for the full dashboard page.
type DashboardData struct {
	RefreshIntervalMs int64
	MaxWindowPoints   int
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// ChartData is the view model for the live-chart partial: the recent window
// in ascending order plus the incoming-data status.
type ChartData struct {
	Status   ingest.Status
	Current  *types.Reading
	Readings []types.Reading
}

// RenderChartPartial executes only the chart partial into w.
// Use for HTMX fragment refresh.
func RenderChartPartial(w io.Writer, data *ChartData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/chart.html", data)
}

// PaginationItem is one entry in the pagination bar: either a page number or an ellipsis.
type PaginationItem struct {
	Page     int
	Ellipsis bool
}

// HistoryData is the view model for the history-table partial.
type HistoryData struct {
	Readings []types.Reading

	// Echoed filter/sort state, for pagination links.
	Date     string
	FromHour string
	ToHour   string
	Sort     string
	Order    string

	CurrentPage int
	TotalPages  int
	RangeStart  int
	RangeEnd    int
	TotalCount  int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	PageItems   []PaginationItem
}

// RenderHistoryPartial executes only the history partial into w.
func RenderHistoryPartial(w io.Writer, data *HistoryData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/history.html", data)
}

// PredictionsData is the view model for the prediction-cards partial.
// Insufficient is set when fewer than two distinct days of data exist.
type PredictionsData struct {
	Predictions  []types.Prediction
	Insufficient bool
}

// RenderPredictionsPartial executes only the predictions partial into w.
func RenderPredictionsPartial(w io.Writer, data *PredictionsData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/predictions.html", data)
}
