// Package metrics exposes the engine's Prometheus counters/histograms
// and a liveness/health endpoint, following the same promhttp + periodic
// dependency-probe pattern the teacher uses for its market-data pipeline.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aliyansayz/marketwatch/internal/model"
	"github.com/aliyansayz/marketwatch/internal/scheduler"
)

// Metrics holds every Prometheus metric the orchestrator and scheduler
// report through.
type Metrics struct {
	OrchestratorRunsTotal   *prometheus.CounterVec // labels: result
	OrchestratorRunDuration prometheus.Histogram

	SchedulerTicksTotal  *prometheus.CounterVec // labels: status
	SchedulerTickDur     prometheus.Histogram
	MonitorsActive       prometheus.Gauge
	MonitorsFailing      prometheus.Gauge

	EventsEmittedTotal *prometheus.CounterVec // labels: condition, severity
	IndicatorComputeDur prometheus.Histogram

	RedisCircuitBreakerState prometheus.Gauge // 0=closed, 1=open, 2=half-open
	RedisCircuitBreakerTrips prometheus.Counter
	RedisBufferedWrites      prometheus.Counter
	SQLiteCommitDur          prometheus.Histogram
}

// NewMetrics registers and returns every metric.
func NewMetrics() *Metrics {
	m := &Metrics{
		OrchestratorRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketwatch_orchestrator_runs_total",
			Help: "Total analysis runs by result (success, data_unavailable, invalid_frame, config_invalid, strategy_error)",
		}, []string{"result"}),
		OrchestratorRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketwatch_orchestrator_run_duration_seconds",
			Help:    "Wall-clock duration of one fetch→kernel→detector→strategy run",
			Buckets: prometheus.DefBuckets,
		}),
		SchedulerTicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketwatch_scheduler_ticks_total",
			Help: "Total scheduler ticks by resulting status",
		}, []string{"status"}),
		SchedulerTickDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketwatch_scheduler_tick_duration_seconds",
			Help:    "Duration of one monitor tick, including the orchestrator run",
			Buckets: prometheus.DefBuckets,
		}),
		MonitorsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "marketwatch_monitors_active",
			Help: "Number of monitors currently attached to the scheduler",
		}),
		MonitorsFailing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "marketwatch_monitors_failing",
			Help: "Number of monitors currently in the Failing state",
		}),
		EventsEmittedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketwatch_events_emitted_total",
			Help: "Total alert events emitted, by condition and severity",
		}, []string{"condition", "severity"}),
		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketwatch_indicator_compute_duration_seconds",
			Help:    "Kernel compute latency per recipe",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		RedisCircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "marketwatch_redis_circuit_breaker_state",
			Help: "Redis verdict-cache circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		RedisCircuitBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketwatch_redis_circuit_breaker_trips_total",
			Help: "Times the Redis circuit breaker tripped open",
		}),
		RedisBufferedWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketwatch_redis_buffered_writes_total",
			Help: "Verdict cache writes buffered locally while the circuit breaker is open",
		}),
		SQLiteCommitDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketwatch_sqlite_commit_duration_seconds",
			Help:    "Alert history append latency",
			Buckets: prometheus.DefBuckets,
		}),
	}

	prometheus.MustRegister(
		m.OrchestratorRunsTotal,
		m.OrchestratorRunDuration,
		m.SchedulerTicksTotal,
		m.SchedulerTickDur,
		m.MonitorsActive,
		m.MonitorsFailing,
		m.EventsEmittedTotal,
		m.IndicatorComputeDur,
		m.RedisCircuitBreakerState,
		m.RedisCircuitBreakerTrips,
		m.RedisBufferedWrites,
		m.SQLiteCommitDur,
	)

	return m
}

// ObserveTick implements scheduler.MetricsRecorder.
func (m *Metrics) ObserveTick(_ string, _ string, status scheduler.Status, duration time.Duration) {
	m.SchedulerTicksTotal.WithLabelValues(string(status)).Inc()
	m.SchedulerTickDur.Observe(duration.Seconds())
}

// ObserveEvent implements scheduler.MetricsRecorder.
func (m *Metrics) ObserveEvent(_ string, _ string, condition model.AlertCondition, severity model.Severity) {
	m.EventsEmittedTotal.WithLabelValues(string(condition), string(severity)).Inc()
}

// HealthStatus tracks the liveness of this process's external
// collaborators for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	SchedulerRunning bool      `json:"scheduler_running"`
	LastTickAt       time.Time `json:"last_tick_at"`
	RedisConnected   bool      `json:"redis_connected"`
	SQLiteOK         bool      `json:"sqlite_ok"`
	MonitorsActive   int       `json:"monitors_active"`
	MonitorsFailing  int       `json:"monitors_failing"`

	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a fresh, unstarted health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetSchedulerRunning(v bool) {
	h.mu.Lock()
	h.SchedulerRunning = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickAt(t time.Time) {
	h.mu.Lock()
	h.LastTickAt = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetMonitorCounts(active, failing int) {
	h.mu.Lock()
	h.MonitorsActive = active
	h.MonitorsFailing = failing
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks until ctx is done.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK

	if !h.SchedulerRunning || h.MonitorsFailing > 0 {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}
	if !h.SchedulerRunning {
		overallStatus = "unhealthy"
	}

	tickAge := ""
	if !h.LastTickAt.IsZero() {
		tickAge = time.Since(h.LastTickAt).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		SchedulerRunning bool   `json:"scheduler_running"`
		LastTickAt      string  `json:"last_tick_at"`
		TickAge         string  `json:"tick_age"`
		MonitorsActive  int     `json:"monitors_active"`
		MonitorsFailing int     `json:"monitors_failing"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:           overallStatus,
		Uptime:           time.Since(h.StartedAt).Round(time.Second).String(),
		SchedulerRunning: h.SchedulerRunning,
		LastTickAt:       h.LastTickAt.Format(time.RFC3339),
		TickAge:          tickAge,
		MonitorsActive:   h.MonitorsActive,
		MonitorsFailing:  h.MonitorsFailing,
		RedisConnected:   h.RedisConnected,
		RedisLatencyMs:   h.RedisLatencyMs,
		SQLiteOK:         h.SQLiteOK,
		SQLiteLatencyMs:  h.SQLiteLatencyMs,
		LastCheckAt:      h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz, plus
// whatever additional routes the caller registers via Mux before Start.
type Server struct {
	health *HealthStatus
	addr   string
	mux    *http.ServeMux
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		mux:    mux,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Mux exposes the underlying router so callers can register extra
// routes (e.g. a WebSocket upgrade endpoint) before calling Start.
func (s *Server) Mux() *http.ServeMux {
	return s.mux
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
