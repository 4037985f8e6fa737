package verification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/phoneotp/internal/pkg/clock"
	"github.com/shandysiswandi/phoneotp/internal/pkg/config"
	"github.com/shandysiswandi/phoneotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/phoneotp/internal/pkg/instrument"
	"github.com/shandysiswandi/phoneotp/internal/pkg/messaging"
	"github.com/shandysiswandi/phoneotp/internal/pkg/router"
	"github.com/shandysiswandi/phoneotp/internal/pkg/uid"
	"github.com/shandysiswandi/phoneotp/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDependency(t *testing.T, yaml string) Dependency {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml), config.WithDefaults(Defaults()))
	require.NoError(t, err)
	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return Dependency{
		Goroutine: goroutine.NewManager(2),
		Router: router.NewRouter(router.Config{
			Config:     cfg,
			UUID:       uid.NewUUID(),
			Instrument: instrument.NewNoop(),
		}),
		Messaging:  messaging.Noop{},
		Config:     cfg,
		Instrument: instrument.NewNoop(),
		UUID:       uid.NewUUID(),
		Clock:      clock.NewFake(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
		Validator:  v,
	}
}

func post(t *testing.T, h http.Handler, path, body string) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestNew_DefaultsServeEndpoints(t *testing.T) {
	// Arrange
	dep := newDependency(t, "app:\n  name: phoneotp\n")

	// Act
	m, err := New(dep)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, post(t, dep.Router, "/api/v1/verification/send", `{"phone":"15551234567"}`))

	require.NoError(t, m.Start())
	<-m.Stop().Done()
}

func TestNew_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	dep := newDependency(t, "modules:\n  verification:\n    store:\n      driver: redis\n      redis_prefix: t\n")
	dep.CacheConn = client

	_, err := New(dep)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, post(t, dep.Router, "/api/v1/verification/send", `{"phone":"+15551234567"}`))
	assert.True(t, mr.Exists("t:+15551234567"))
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{name: "redis without connection", yaml: "modules:\n  verification:\n    store:\n      driver: redis\n", want: ErrRedisRequired},
		{name: "unknown store", yaml: "modules:\n  verification:\n    store:\n      driver: etcd\n"},
		{name: "unknown gateway", yaml: "modules:\n  verification:\n    gateway:\n      driver: pigeon\n"},
		{name: "twilio without credentials", yaml: "modules:\n  verification:\n    gateway:\n      driver: twilio\n"},
		{name: "bad code length", yaml: "modules:\n  verification:\n    code_length: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(newDependency(t, tt.yaml))

			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestNew_MissingDependency(t *testing.T) {
	dep := newDependency(t, "")
	dep.Router = nil

	_, err := New(dep)

	assert.Error(t, err)
}

type capturePublisher struct {
	published chan string
}

func (p *capturePublisher) Publish(_ context.Context, destination string, _ messaging.OutgoingMessage) (messaging.PublishResult, error) {
	p.published <- destination
	return messaging.PublishResult{Topic: destination}, nil
}

func (p *capturePublisher) Close() error { return nil }

func TestNew_EventsPublishedOnVerify(t *testing.T) {
	// Arrange
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	pub := &capturePublisher{published: make(chan string, 1)}
	dep := newDependency(t, "modules:\n  verification:\n    events:\n      enabled: true\n    store:\n      driver: redis\n")
	dep.CacheConn = client
	dep.Messaging = pub

	_, err := New(dep)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, post(t, dep.Router, "/api/v1/verification/send", `{"phone":"+15551234567"}`))

	raw, err := mr.Get("otp:+15551234567")
	require.NoError(t, err)
	var stored struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))

	// Act
	code := post(t, dep.Router, "/api/v1/verification/verify", `{"phone":"+15551234567","code":"`+stored.Code+`"}`)

	// Assert
	assert.Equal(t, http.StatusOK, code)
	require.NoError(t, dep.Goroutine.Wait())
	assert.Equal(t, "phone_verified", <-pub.published)
}
