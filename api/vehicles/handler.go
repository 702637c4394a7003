// Package vehicles exposes the vehicle registry and maintenance scoring over
// HTTP.
package vehicles

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/fleetcare/api/render"
	"github.com/kilianp07/fleetcare/core/fleet"
	"github.com/kilianp07/fleetcare/core/maintenance"
	"github.com/kilianp07/fleetcare/core/model"
	"github.com/kilianp07/fleetcare/core/prediction"
)

// DefaultListLimit caps GET /api/vehicles when no limit is given.
const DefaultListLimit = 20

// maxProbability caps the probability reported by predict-maintenance.
const maxProbability = 0.95

// Scorer evaluates maintenance needs.
type Scorer interface {
	ScoreVehicleWith(ctx context.Context, policy maintenance.PolicyName, id string, at time.Time) (prediction.Evaluation, error)
	DefaultPolicy() maintenance.PolicyName
}

// Options tunes the handlers.
type Options struct {
	// PlaceholderUnknown answers predict-maintenance for unknown vehicles
	// with a random placeholder instead of 404.
	PlaceholderUnknown bool
	// AlertDays is the default horizon of /api/maintenance-alerts.
	AlertDays int
	Now       func() time.Time
	// Seed drives the placeholder generator.
	Seed int64
}

// Handler serves the vehicle endpoints.
type Handler struct {
	reg    fleet.Registry
	scorer Scorer
	opts   Options

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHandler returns a Handler over reg and scorer.
func NewHandler(reg fleet.Registry, scorer Scorer, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AlertDays <= 0 {
		opts.AlertDays = 14
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Handler{reg: reg, scorer: scorer, opts: opts, rng: rand.New(rand.NewSource(seed))}
}

// Routes registers the endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/vehicles", h.list)
	r.Get("/api/vehicles/{id}", h.get)
	r.Get("/api/vehicles/{id}/maintenance", h.score)
	r.Post("/api/predict-maintenance", h.predict)
	r.Get("/api/maintenance-alerts", h.alerts)
}

type vehicleView struct {
	ID              string  `json:"vehicle_id"`
	Type            string  `json:"type"`
	Status          string  `json:"status"`
	Mileage         int     `json:"mileage"`
	FuelEfficiency  float64 `json:"fuel_efficiency"`
	LastMaintenance string  `json:"last_maintenance,omitempty"`
	NextMaintenance string  `json:"next_maintenance,omitempty"`
}

func viewOf(v model.VehicleRecord) vehicleView {
	return vehicleView{
		ID:              v.ID,
		Type:            string(v.Type),
		Status:          string(v.Status),
		Mileage:         v.Mileage,
		FuelEfficiency:  v.ReportedEfficiency,
		LastMaintenance: formatDate(v.LastMaintenanceDate),
		NextMaintenance: formatDate(v.NextMaintenanceDate),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", DefaultListLimit)
	if err != nil {
		render.Error(w, err)
		return
	}
	f := fleet.VehicleFilter{Status: model.VehicleStatus(r.URL.Query().Get("status")), Limit: limit}
	vs, err := h.reg.Vehicles(r.Context(), f)
	if err != nil {
		render.Error(w, err)
		return
	}
	out := make([]vehicleView, len(vs))
	for i, v := range vs {
		out[i] = viewOf(v)
	}
	render.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.reg.Vehicle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, err)
		return
	}
	render.JSON(w, http.StatusOK, viewOf(v))
}

type evaluationView struct {
	VehicleID             string                  `json:"vehicle_id"`
	Policy                string                  `json:"policy"`
	NeedsMaintenance      bool                    `json:"needs_maintenance"`
	RiskScore             float64                 `json:"risk_score"`
	DaysUntilMaintenance  int                     `json:"days_until_maintenance"`
	MilesUntilMaintenance int                     `json:"miles_until_maintenance"`
	RecommendedDate       string                  `json:"recommended_date"`
	RiskFactors           maintenance.RiskFactors `json:"risk_factors"`
	PredictedEfficiency   *float64                `json:"predicted_efficiency,omitempty"`
	ObservedEfficiency    *float64                `json:"observed_efficiency,omitempty"`
}

// score serves GET /api/vehicles/{id}/maintenance?date=&policy=.
func (h *Handler) score(w http.ResponseWriter, r *http.Request) {
	at := h.opts.Now()
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := model.ParseDate(s)
		if err != nil {
			render.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		at = d
	}
	policy := h.scorer.DefaultPolicy()
	if s := r.URL.Query().Get("policy"); s != "" {
		p, err := maintenance.ParsePolicyName(s)
		if err != nil {
			render.Error(w, err)
			return
		}
		policy = p
	}
	ev, err := h.scorer.ScoreVehicleWith(r.Context(), policy, chi.URLParam(r, "id"), at)
	if err != nil {
		render.Error(w, err)
		return
	}
	render.JSON(w, http.StatusOK, evaluationView{
		VehicleID:             ev.VehicleID,
		Policy:                string(ev.Policy),
		NeedsMaintenance:      ev.NeedsMaintenance,
		RiskScore:             round2(ev.RiskScore),
		DaysUntilMaintenance:  ev.DaysUntilMaintenance,
		MilesUntilMaintenance: ev.MilesUntilMaintenance,
		RecommendedDate:       formatDate(ev.RecommendedDate),
		RiskFactors:           ev.Factors,
		PredictedEfficiency:   ev.PredictedEfficiency,
		ObservedEfficiency:    ev.ObservedEfficiency,
	})
}

type predictRequest struct {
	VehicleID string `json:"vehicle_id"`
}

type predictResponse struct {
	VehicleID        string                   `json:"vehicle_id"`
	NeedsMaintenance bool                     `json:"needs_maintenance"`
	Probability      float64                  `json:"probability"`
	RecommendedDate  string                   `json:"recommended_date"`
	RiskFactors      *maintenance.RiskFactors `json:"risk_factors,omitempty"`
	Placeholder      bool                     `json:"placeholder,omitempty"`
}

// predict serves POST /api/predict-maintenance with the schedule policy.
func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VehicleID == "" {
		render.Error(w, fmt.Errorf("%w: body must be {\"vehicle_id\": \"...\"}", render.ErrBadRequest))
		return
	}
	at := h.opts.Now()
	ev, err := h.scorer.ScoreVehicleWith(r.Context(), maintenance.PolicySchedule, req.VehicleID, at)
	if err != nil {
		if h.opts.PlaceholderUnknown && render.Status(err) == http.StatusNotFound {
			render.JSON(w, http.StatusOK, h.placeholder(req.VehicleID, at))
			return
		}
		render.Error(w, err)
		return
	}
	factors := ev.Factors
	render.JSON(w, http.StatusOK, predictResponse{
		VehicleID:        ev.VehicleID,
		NeedsMaintenance: ev.NeedsMaintenance,
		Probability:      round2(math.Min(ev.RiskScore, maxProbability)),
		RecommendedDate:  formatDate(ev.RecommendedDate),
		RiskFactors:      &factors,
	})
}

// placeholder fabricates a demo answer for a vehicle absent from the registry.
func (h *Handler) placeholder(id string, at time.Time) predictResponse {
	h.mu.Lock()
	needs := h.rng.Intn(2) == 1
	p := 0.3 + 0.6*h.rng.Float64()
	lead := 7 + h.rng.Intn(24)
	h.mu.Unlock()
	return predictResponse{
		VehicleID:        id,
		NeedsMaintenance: needs,
		Probability:      round2(p),
		RecommendedDate:  formatDate(model.Day(at).AddDate(0, 0, lead)),
		Placeholder:      true,
	}
}

type alertView struct {
	VehicleID       string `json:"vehicle_id"`
	Type            string `json:"type"`
	NextMaintenance string `json:"next_maintenance"`
	Mileage         int    `json:"mileage"`
	DaysUntil       int    `json:"days_until"`
}

// alerts serves GET /api/maintenance-alerts?within_days=N.
func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "within_days", h.opts.AlertDays)
	if err != nil {
		render.Error(w, err)
		return
	}
	at := h.opts.Now()
	vs, err := h.reg.Vehicles(r.Context(), fleet.VehicleFilter{DueBefore: model.Day(at).AddDate(0, 0, days)})
	if err != nil {
		render.Error(w, err)
		return
	}
	out := make([]alertView, len(vs))
	for i, v := range vs {
		out[i] = alertView{
			VehicleID:       v.ID,
			Type:            string(v.Type),
			NextMaintenance: formatDate(v.NextMaintenanceDate),
			Mileage:         v.Mileage,
			DaysUntil:       model.DaysBetween(at, v.NextMaintenanceDate),
		}
	}
	render.JSON(w, http.StatusOK, out)
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

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
