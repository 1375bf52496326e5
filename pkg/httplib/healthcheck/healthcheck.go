package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Checker reports whether a single dependency is reachable.
type Checker func(ctx context.Context) error

// HealthCheck is the health check handler. Each registered checker is
// probed on every GET /health request.
type HealthCheck struct {
	checkers map[string]Checker
	timeout  time.Duration
}

type response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// New creates a health check handler with the given per-check timeout.
func New(timeout time.Duration) *HealthCheck {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthCheck{
		checkers: make(map[string]Checker),
		timeout:  timeout,
	}
}

// Register adds a named dependency checker. Not safe for concurrent use
// with ServeHTTP, register everything during startup.
func (hc *HealthCheck) Register(name string, checker Checker) {
	hc.checkers[name] = checker
}

// Handler is used to control the flow of GET /health endpoint
func (hc *HealthCheck) Handler(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if IsHealthCheckRequest(r) {
			hc.ServeHTTP(w, r)

			return
		}

		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

// ServeHTTP serve http request for health check
func (hc *HealthCheck) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), hc.timeout)
	defer cancel()

	resp := response{
		Status: "ok",
		Checks: make(map[string]string, len(hc.checkers)),
	}

	code := http.StatusOK
	for name, check := range hc.checkers {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// IsHealthCheckRequest is used to check if the request is a health check request
func IsHealthCheckRequest(r *http.Request) bool {
	return r.Method == "GET" && r.URL.Path == "/health"
}
