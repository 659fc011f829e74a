package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusDegraded     = "degraded"
)

// HealthChecker tracks whether the watch scheduler is running and how its
// last sync run went.
type HealthChecker struct {
	ready   atomic.Bool
	sc      *ServerContext
	started time.Time

	mu      sync.RWMutex
	lastRun *RunReport
}

// RunReport describes the most recent scheduled run.
type RunReport struct {
	Flow     string    `json:"flow"`
	Finished time.Time `json:"finished"`
	Errors   int       `json:"errors"`
	Failure  string    `json:"failure,omitempty"`
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status  string     `json:"status"`
	Uptime  string     `json:"uptime"`
	LastRun *RunReport `json:"last_run,omitempty"`
}

// NewHealthChecker returns a ready checker. sc may be nil.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, started: time.Now()}
	h.ready.Store(true)
	return h
}

func (h *HealthChecker) SetReady(ready bool) { h.ready.Store(ready) }

func (h *HealthChecker) IsReady() bool { return h.ready.Load() }

// RecordRun stores the outcome of a run. failure is the run-level error,
// rowErrors the number of per-row errors.
func (h *HealthChecker) RecordRun(flow string, rowErrors int, failure error) {
	report := &RunReport{Flow: flow, Finished: time.Now(), Errors: rowErrors}
	if failure != nil {
		report.Failure = failure.Error()
	}
	h.mu.Lock()
	h.lastRun = report
	h.mu.Unlock()
}

// LastRun returns a copy of the most recent run, or nil before the first one.
func (h *HealthChecker) LastRun() *RunReport {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.lastRun == nil {
		return nil
	}
	r := *h.lastRun
	return &r
}

// checks returns the readiness checks and whether all of them pass.
func (h *HealthChecker) checks() (map[string]string, bool) {
	checks := map[string]string{"ready": healthStatusOK, "shutdown": healthStatusOK}
	ok := true
	if !h.IsReady() {
		checks["ready"] = healthStatusNotReady
		ok = false
	}
	if h.sc != nil && h.sc.IsShutdown() {
		checks["shutdown"] = healthStatusShuttingDown
		ok = false
	}
	return checks, ok
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// LivenessHandler serves /healthz. It answers ok while the process runs.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz: 503 before the scheduler started and
// during shutdown.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, ok := h.checks()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: healthStatusNotReady, Checks: checks})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK, Checks: checks})
	})
}

// DetailedHealthHandler serves /healthz/detailed with the uptime and the last
// run. A failed last run reports "degraded" but keeps status 200, since the
// next scheduled run may recover.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := DetailedHealthResponse{
			Status:  healthStatusOK,
			Uptime:  time.Since(h.started).Truncate(time.Second).String(),
			LastRun: h.LastRun(),
		}
		checks, ok := h.checks()
		switch {
		case !ok && checks["shutdown"] != healthStatusOK:
			resp.Status = healthStatusShuttingDown
		case !ok:
			resp.Status = healthStatusNotReady
		case resp.LastRun != nil && resp.LastRun.Failure != "":
			resp.Status = healthStatusDegraded
		}
		code := http.StatusOK
		if !ok {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	})
}

// RegisterHealthEndpoints mounts the three health endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}
