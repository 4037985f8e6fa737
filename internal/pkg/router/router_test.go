package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/phoneotp/internal/pkg/config"
	"github.com/shandysiswandi/phoneotp/internal/pkg/goerror"
	"github.com/shandysiswandi/phoneotp/internal/pkg/instrument"
	"github.com/shandysiswandi/phoneotp/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type created struct {
	ID string `json:"id"`
}

func (created) StatusCode() int { return http.StatusCreated }
func (created) Message() string { return "created" }

func newTestRouter(t *testing.T, cfgYAML string, checks map[string]HealthCheck) *Router {
	t.Helper()

	var cfg config.Config
	if cfgYAML != "" {
		c, err := config.NewViperFromBytes("yaml", []byte(cfgYAML))
		require.NoError(t, err)
		cfg = c
	}

	return NewRouter(Config{
		Config:       cfg,
		UUID:         fixedID("cid-generated"),
		Instrument:   instrument.NewNoop(),
		Name:         "phoneotp",
		HealthChecks: checks,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestRouter_SuccessEnvelope(t *testing.T) {
	// Arrange
	ro := newTestRouter(t, "", nil)
	ro.POST("/things", func(r *Request) (any, error) {
		var in struct {
			Name string `json:"name"`
		}
		if err := r.DecodeBody(&in); err != nil {
			return nil, err
		}
		return created{ID: in.Name}, nil
	})

	// Act
	rec, body := do(t, ro, http.MethodPost, "/things", `{"name":"a"}`)

	// Assert
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "created", body["message"])
	assert.Equal(t, map[string]any{"id": "a"}, body["data"])
	assert.Equal(t, "cid-generated", rec.Header().Get(HeaderCorrelationID))
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
		wantErrs map[string]any
	}{
		{
			name:     "business",
			err:      goerror.NewBusinessWrap(errors.New("gone"), "Verification code has expired", goerror.CodeGone),
			wantCode: http.StatusGone,
			wantMsg:  "Verification code has expired",
		},
		{
			name:     "validation",
			err:      goerror.NewInvalidInput(validator.V10ValidationError{"phone": "phone is a required field"}),
			wantCode: http.StatusUnprocessableEntity,
			wantMsg:  "Validation error",
			wantErrs: map[string]any{"phone": "phone is a required field"},
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ro := newTestRouter(t, "", nil)
			ro.GET("/fail", func(*Request) (any, error) { return nil, tt.err })

			rec, body := do(t, ro, http.MethodGet, "/fail", "")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantMsg, body["message"])
			if tt.wantErrs != nil {
				assert.Equal(t, tt.wantErrs, body["error"])
			}
		})
	}
}

func TestRouter_DecodeBodyRejectsUnknownAndTrailing(t *testing.T) {
	ro := newTestRouter(t, "", nil)
	ro.POST("/in", func(r *Request) (any, error) {
		var in struct {
			Phone string `json:"phone"`
		}
		return nil, r.DecodeBody(&in)
	})

	for _, payload := range []string{`{"phone":"1","x":1}`, `{"phone":"1"}{}`, `not json`, ``} {
		rec, _ := do(t, ro, http.MethodPost, "/in", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}

	rec, _ := do(t, ro, http.MethodPost, "/in", `{"phone":"1"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_CorrelationIDFromHeader(t *testing.T) {
	ro := newTestRouter(t, "", nil)
	var seen string
	ro.GET("/cid", func(r *Request) (any, error) {
		seen = instrument.GetCorrelationID(r.Context())
		return map[string]string{}, nil
	})

	rec, _ := do(t, ro, http.MethodGet, "/cid", "", HeaderRequestID, " from-proxy ")

	assert.Equal(t, "from-proxy", seen)
	assert.Equal(t, "from-proxy", rec.Header().Get(HeaderCorrelationID))
}

func TestRouter_Recover(t *testing.T) {
	ro := newTestRouter(t, "", nil)
	ro.GET("/panic", func(*Request) (any, error) { panic("kaboom") })

	rec, body := do(t, ro, http.MethodGet, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["message"])
}

func TestRouter_Maintenance(t *testing.T) {
	ro := newTestRouter(t, "app:\n  maintenance:\n    endpoints: \"POST /blocked\"\n", nil)
	ro.POST("/blocked", func(*Request) (any, error) { return map[string]string{}, nil })
	ro.GET("/blocked", func(*Request) (any, error) { return map[string]string{}, nil })

	rec, _ := do(t, ro, http.MethodPost, "/blocked", "{}")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = do(t, ro, http.MethodGet, "/blocked", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	ro := newTestRouter(t, "", map[string]HealthCheck{
		"redis": func(context.Context) error { return nil },
	})
	rec, body := do(t, ro, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "up", "checks": map[string]any{"redis": "ok"}}, body["data"])

	down := newTestRouter(t, "", map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	rec, body = do(t, down, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "service is degraded", body["message"])
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	ro := newTestRouter(t, "", nil)
	ro.POST("/only-post", func(*Request) (any, error) { return nil, nil })

	rec, _ := do(t, ro, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, ro, http.MethodGet, "/only-post", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", realIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", realIP(req))

	req.Header.Set("X-Real-IP", "not-an-ip")
	assert.Equal(t, "203.0.113.7", realIP(req))
}
