package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/phoneotp/internal/pkg/instrument"
	"github.com/shandysiswandi/phoneotp/internal/pkg/uid"
)

const (
	// HeaderCorrelationID is echoed on every response.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is accepted when proxies set it instead.
	HeaderRequestID = "X-Request-ID"

	maxCIDLen = 128
)

func normalizeCID(v string) string {
	if strings.ContainsAny(v, "\r\n") {
		return ""
	}
	v = strings.TrimSpace(v)
	if len(v) > maxCIDLen {
		v = v[:maxCIDLen]
	}
	return v
}

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := normalizeCID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				cid = normalizeCID(r.Header.Get(HeaderRequestID))
			}
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
