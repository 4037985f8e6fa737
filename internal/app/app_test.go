package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
app:
  name: phoneotp-test
  maintenance:
    endpoints: "POST /api/v1/maintenance-only"
modules:
  verification:
    gateway:
      driver: log
    store:
      driver: memory
`

type successEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error"`
}

func startApp(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	t.Setenv("CONFIG_PATH", path)

	a := New()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	errChan := a.Serve(l)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Stop(ctx)
		if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("serve: %v", err)
		}
	})

	return "http://" + l.Addr().String()
}

func doJSON(t *testing.T, method, url string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		require.NoError(t, json.NewEncoder(buf).Encode(payload))
		body = buf
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBody
}

func TestApp_Health(t *testing.T) {
	base := startApp(t)

	status, body := doJSON(t, http.MethodGet, base+"/health", nil)

	assert.Equal(t, http.StatusOK, status)
	var env successEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, "service is up", env.Message)
}

func TestApp_VerificationFlow(t *testing.T) {
	// Arrange
	base := startApp(t)

	// Act & Assert
	status, body := doJSON(t, http.MethodPost, base+"/api/v1/verification/send", map[string]string{"phone": "15551234567"})
	require.Equal(t, http.StatusOK, status, string(body))

	var sent successEnvelope
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.Equal(t, "Verification code sent", sent.Message)

	var data struct {
		MessageID string    `json:"message_id"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(sent.Data, &data))
	assert.True(t, strings.HasPrefix(data.MessageID, "log-"))
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), data.ExpiresAt, time.Minute)

	status, body = doJSON(t, http.MethodPost, base+"/api/v1/verification/verify", map[string]string{"phone": "+15551234567", "code": "abc"})
	assert.Equal(t, http.StatusUnauthorized, status)
	var errEnv errorEnvelope
	require.NoError(t, json.Unmarshal(body, &errEnv))
	assert.Equal(t, "Invalid verification code", errEnv.Message)

	status, body = doJSON(t, http.MethodPost, base+"/api/v1/verification/verify", map[string]string{"phone": "+10000000000", "code": "123456"})
	assert.Equal(t, http.StatusNotFound, status, string(body))

	status, body = doJSON(t, http.MethodPost, base+"/api/v1/verification/send", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	errEnv = errorEnvelope{}
	require.NoError(t, json.Unmarshal(body, &errEnv))
	assert.Contains(t, errEnv.Error, "phone")
}
