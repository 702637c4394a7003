// Package app wires the configuration into a running service: storage,
// metrics, alerting, the prediction engine and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	fleetapi "github.com/kilianp07/fleetcare/api/fleet"
	"github.com/kilianp07/fleetcare/api/render"
	"github.com/kilianp07/fleetcare/api/vehicles"
	"github.com/kilianp07/fleetcare/config"
	"github.com/kilianp07/fleetcare/core/alerts"
	"github.com/kilianp07/fleetcare/core/fleet"
	coremetrics "github.com/kilianp07/fleetcare/core/metrics"
	coremon "github.com/kilianp07/fleetcare/core/monitoring"
	"github.com/kilianp07/fleetcare/core/prediction"
	"github.com/kilianp07/fleetcare/infra/logger"
	_ "github.com/kilianp07/fleetcare/infra/metrics"
	"github.com/kilianp07/fleetcare/infra/monitoring"
	_ "github.com/kilianp07/fleetcare/infra/mqtt"
	"github.com/kilianp07/fleetcare/infra/redis"
	"github.com/kilianp07/fleetcare/infra/store"
)

const shutdownTimeout = 5 * time.Second

// Service owns every long lived component.
type Service struct {
	Store   fleet.Store
	Engine  *prediction.Engine
	Reports *fleet.Reporter

	cfg       *config.Config
	log       logger.Logger
	router    chi.Router
	publisher alerts.Publisher
	redis     *goredis.Client
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	newLogger := func(component string) logger.Logger {
		return logger.NewWithOptions(logger.Options{
			Component: component,
			Level:     cfg.Logging.Level,
			Console:   cfg.Logging.Console,
		})
	}
	logg := newLogger("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	st, err := store.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	svc := &Service{Store: st, cfg: cfg, log: logg}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var notifier *alerts.Notifier
	if cfg.Alerts.Enabled {
		notifier, err = svc.newNotifier(sink, newLogger("alerts"))
		if err != nil {
			_ = svc.Close()
			return nil, err
		}
	}

	engine, err := prediction.NewEngine(cfg.Engine, st, st, sink, newLogger("engine"), notifier)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("prediction engine: %w", err)
	}
	svc.Engine = engine
	svc.Reports = fleet.NewReporter(st, st, cfg.Reports)
	svc.router = svc.routes()
	return svc, nil
}

func (s *Service) newNotifier(sink coremetrics.MetricsSink, log logger.Logger) (*alerts.Notifier, error) {
	pub, err := alerts.NewPublisher(s.cfg.Alerts.Publisher)
	if err != nil {
		return nil, fmt.Errorf("alerts publisher: %w", err)
	}
	s.publisher = pub

	var dedup alerts.Deduper = alerts.NewMemoryDeduper()
	if s.cfg.Alerts.Deduper == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		client, err := redis.NewClient(ctx, s.cfg.Alerts.Redis)
		if err != nil {
			return nil, fmt.Errorf("alerts deduper: %w", err)
		}
		s.redis = client
		dedup = redis.NewDeduper(client)
	}
	return alerts.NewNotifier(pub, dedup, s.cfg.Alerts.Notifier(), sink, log), nil
}

func (s *Service) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	vehicles.NewHandler(s.Store, s.Engine, vehicles.Options{
		PlaceholderUnknown: s.cfg.HTTP.PlaceholderUnknown,
		AlertDays:          s.Reports.Config().AlertDays,
	}).Routes(r)
	fleetapi.NewHandler(s.Reports, s.Engine, nil).Routes(r)
	return r
}

func (s *Service) health(w http.ResponseWriter, _ *http.Request) {
	st := s.Engine.ModelStatus()
	render.JSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"models": map[string]string{
			"efficiency": st.Efficiency.State.String(),
			"anomaly":    st.Anomaly.State.String(),
		},
	})
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler { return s.router }

// Train fits both models over the configured window and logs the outcome.
func (s *Service) Train(ctx context.Context) (prediction.TrainingReport, error) {
	rep, err := s.Engine.TrainModels(ctx, 0)
	if err != nil {
		coremon.CaptureException(err, map[string]string{"module": "engine"})
		return rep, err
	}
	s.log.Infof("models trained: efficiency=%s anomaly=%s", rep.Efficiency.State, rep.Anomaly.State)
	return rep, nil
}

// Run trains the models, serves the API and retrains periodically until ctx
// is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if _, err := s.Train(ctx); err != nil {
		s.log.Warnf("initial training: %v", err)
	}

	srv := &http.Server{
		Addr:         s.cfg.HTTP.Address,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.HTTP.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.HTTP.WriteTimeoutSeconds) * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		defer coremon.Recover()
		s.log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if every := time.Duration(s.cfg.Engine.RetrainIntervalMinutes) * time.Minute; every > 0 {
		go s.retrain(ctx, every)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		coremon.CaptureException(runErr, map[string]string{"module": "http"})
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (s *Service) retrain(ctx context.Context, every time.Duration) {
	defer coremon.Recover()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Train(ctx); err != nil {
				s.log.Errorf("retrain: %v", err)
			}
		}
	}
}

// Close releases the store, the alert transport and flushes monitoring.
func (s *Service) Close() error {
	var errs []error
	if d, ok := s.publisher.(interface{ Disconnect() }); ok {
		d.Disconnect()
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if c, ok := s.Store.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
