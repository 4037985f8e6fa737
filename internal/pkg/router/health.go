package router

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	code   int
}

func (h healthResponse) StatusCode() int { return h.code }

func (h healthResponse) Message() string { return "service is " + h.Status }

func healthHandler(checks map[string]HealthCheck) Handler {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(r *Request) (any, error) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "up", code: http.StatusOK}
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}

		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				resp.code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		return resp, nil
	}
}
