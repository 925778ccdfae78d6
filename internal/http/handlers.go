package http

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports ready only when the record store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]string{"store": "ok"},
	}
	status := http.StatusOK

	if err := s.expenses.Ping(ctx); err != nil {
		resp.Status = "not_ready"
		resp.Checks["store"] = "failed: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	NewJSONResponse().Status(status).Body(resp).Write(w)
}

type metricsResponse struct {
	Requests           int64 `json:"requests"`
	ServerErrors       int64 `json:"serverErrors"`
	RateLimited        int64 `json:"rateLimited"`
	RateLimitClients   int64 `json:"rateLimitClients"`
	SuspiciousRequests int64 `json:"suspiciousRequests"`
}

// handleMetrics exposes the middleware counters as JSON.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tm := s.tracer.GetMetrics()
	rm := s.rateLimiter.GetMetrics()
	NewJSONResponse().Body(metricsResponse{
		Requests:           tm.TotalRequests,
		ServerErrors:       tm.ServerErrors,
		RateLimited:        rm.TotalHits,
		RateLimitClients:   rm.ClientCount,
		SuspiciousRequests: s.detector.GetMetrics().SuspiciousRequests,
	}).Write(w)
}
