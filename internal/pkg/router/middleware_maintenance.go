package router

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/phoneotp/internal/pkg/config"
)

// middlewareMaintenance rejects routes listed in app.maintenance.endpoints as
// "METHOD /path" or "/path". The list is read per request so a config reload
// takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			blocked := lo.Contains(cfg.GetArray("app.maintenance.endpoints"), route) ||
				lo.Contains(cfg.GetArray("app.maintenance.endpoints"), r.Method+" "+route)
			if blocked {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
