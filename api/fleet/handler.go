// Package fleet exposes fleet reports, anomaly scans and model training over
// HTTP.
package fleet

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/fleetcare/api/render"
	corefleet "github.com/kilianp07/fleetcare/core/fleet"
	"github.com/kilianp07/fleetcare/core/model"
	"github.com/kilianp07/fleetcare/core/prediction"
)

// Engine is the part of prediction.Engine served here.
type Engine interface {
	TrainModels(ctx context.Context, windowDays int) (prediction.TrainingReport, error)
	DetectFleetAnomalies(ctx context.Context, windowDays int) ([]model.AnomalyResult, error)
	ModelStatus() prediction.TrainingReport
}

// Handler serves the fleet endpoints.
type Handler struct {
	reports *corefleet.Reporter
	engine  Engine
	now     func() time.Time
}

// NewHandler returns a Handler. A nil now uses the wall clock.
func NewHandler(reports *corefleet.Reporter, engine Engine, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{reports: reports, engine: engine, now: now}
}

// Routes registers the endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/fleet-summary", h.summary)
	r.Get("/api/fuel-trends", h.trends)
	r.Get("/api/anomalies", h.anomalies)
	r.Get("/api/models", h.models)
	r.Post("/api/models/train", h.train)
}

type summaryView struct {
	TotalVehicles    int     `json:"total_vehicles"`
	ActiveVehicles   int     `json:"active_vehicles"`
	FuelEfficiency   float64 `json:"fuel_efficiency"`
	EfficiencySource string  `json:"efficiency_source,omitempty"`
	MaintenanceDue   int     `json:"maintenance_due"`
	AsOf             string  `json:"as_of"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.reports.Summary(r.Context(), h.now())
	if err != nil {
		render.Error(w, err)
		return
	}
	render.JSON(w, http.StatusOK, summaryView{
		TotalVehicles:    s.TotalVehicles,
		ActiveVehicles:   s.ActiveVehicles,
		FuelEfficiency:   s.FuelEfficiency,
		EfficiencySource: s.EfficiencySource,
		MaintenanceDue:   s.MaintenanceDue,
		AsOf:             s.AsOf.Format(model.DateLayout),
	})
}

type pointView struct {
	Date          string  `json:"date"`
	AvgFuel       float64 `json:"avg_fuel"`
	AvgEfficiency float64 `json:"avg_efficiency"`
	Vehicles      int     `json:"vehicles"`
}

// trendsView keeps the chart-ready arrays next to the daily points.
type trendsView struct {
	Labels     []string    `json:"labels"`
	FuelUsage  []float64   `json:"fuel_usage"`
	Efficiency []float64   `json:"efficiency"`
	Points     []pointView `json:"points"`
}

func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", h.reports.Config().TrendDays)
	if err != nil {
		render.Error(w, err)
		return
	}
	pts, err := h.reports.Trends(r.Context(), h.now(), days)
	if err != nil {
		render.Error(w, err)
		return
	}
	out := trendsView{
		Labels:     make([]string, len(pts)),
		FuelUsage:  make([]float64, len(pts)),
		Efficiency: make([]float64, len(pts)),
		Points:     make([]pointView, len(pts)),
	}
	for i, p := range pts {
		out.Labels[i] = p.Date.Format("Mon")
		out.FuelUsage[i] = p.AvgFuel
		out.Efficiency[i] = p.AvgEfficiency
		out.Points[i] = pointView{Date: p.Date.Format(model.DateLayout), AvgFuel: p.AvgFuel, AvgEfficiency: p.AvgEfficiency, Vehicles: p.Vehicles}
	}
	render.JSON(w, http.StatusOK, out)
}

type anomalyView struct {
	VehicleID string  `json:"vehicle_id"`
	Date      string  `json:"date"`
	Score     float64 `json:"anomaly_score"`
	Severity  string  `json:"severity"`
}

type anomaliesView struct {
	Trained    bool          `json:"trained"`
	WindowDays int           `json:"window_days"`
	Anomalies  []anomalyView `json:"anomalies"`
}

func (h *Handler) anomalies(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "window_days", 0)
	if err != nil {
		render.Error(w, err)
		return
	}
	res, err := h.engine.DetectFleetAnomalies(r.Context(), days)
	if err != nil {
		render.Error(w, err)
		return
	}
	out := anomaliesView{
		Trained:    h.engine.ModelStatus().Anomaly.OK(),
		WindowDays: days,
		Anomalies:  make([]anomalyView, len(res)),
	}
	for i, a := range res {
		out.Anomalies[i] = anomalyView{VehicleID: a.VehicleID, Date: a.Date.Format(model.DateLayout), Score: a.Score, Severity: string(a.Severity)}
	}
	render.JSON(w, http.StatusOK, out)
}

func (h *Handler) models(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, http.StatusOK, h.engine.ModelStatus())
}

func (h *Handler) train(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "window_days", 0)
	if err != nil {
		render.Error(w, err)
		return
	}
	rep, err := h.engine.TrainModels(r.Context(), days)
	if err != nil {
		render.Error(w, err)
		return
	}
	render.JSON(w, http.StatusOK, rep)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", render.ErrBadRequest, name)
	}
	return n, nil
}
