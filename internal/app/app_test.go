package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/middleware"
	"salespulse/internal/shared/testutil"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Export.OutputDir = t.TempDir()
	cfg.Security.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	logger, _ := testutil.NewTestLogger(t)

	a, err := NewApplication(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.OTelProviders.Shutdown(context.Background()) })
	return a
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string `json:"error_code"`
		} `json:"error"`
		TraceID string `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.TraceID)
	return env.Error.ErrorCode
}

func forecastBody(months int) string {
	parts := make([]string, months)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"month":"2024-%02d","revenue":%d}`, i+1, 100+i*10)
	}
	return `{"series":[` + strings.Join(parts, ",") + `],"method":"moving_average","horizon":2}`
}

func forecastRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/forecast", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	_, err := NewApplication(nil, nil)
	assert.Error(t, err)
}

func TestNewApplication_Server(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Server.Port = 9191
		c.Server.ReadTimeout = 7 * time.Second
	})

	assert.Equal(t, ":9191", a.Server.Addr)
	assert.Equal(t, 7*time.Second, a.Server.ReadTimeout)
	assert.Equal(t, a.Config.Server.WriteTimeout, a.Server.WriteTimeout)
	assert.NotNil(t, a.Runner)
	assert.NotNil(t, a.Engine)
}

func TestRouter_Health(t *testing.T) {
	a := newTestApp(t, nil)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestRouter_Errors(t *testing.T) {
	a := newTestApp(t, nil)

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown route",
			req:        httptest.NewRequest(http.MethodGet, "/api/nope", nil),
			wantStatus: http.StatusNotFound,
			wantCode:   apierrors.CodeNotFound,
		},
		{
			name:       "wrong method",
			req:        httptest.NewRequest(http.MethodPost, "/api/health", nil),
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   apierrors.CodeMethodNotAllowed,
		},
		{
			name:       "insufficient data",
			req:        forecastRequest(`{"series":[{"month":"2024-01","revenue":1}],"method":"arima"}`),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apierrors.CodeInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(a, tt.req)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestRouter_Forecast(t *testing.T) {
	a := newTestApp(t, nil)

	rec := serve(a, forecastRequest(forecastBody(6)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"method":"moving_average"`)
}

func TestRouter_Metrics(t *testing.T) {
	a := newTestApp(t, nil)

	// one request so the HTTP instruments have something to export
	serve(a, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	rec := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouter_MetricsDisabled(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Telemetry.EnableMetrics = false
	})

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	})

	first := serve(a, forecastRequest(forecastBody(3)))
	second := serve(a, forecastRequest(forecastBody(3)))

	assert.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, apierrors.CodeRateLimitExceeded, errorCode(t, second))

	// health is outside the limited group
	assert.Equal(t, http.StatusOK, serve(a, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
}

func TestRouter_MaxUploadBytes(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Security.MaxUploadBytes = 64
	})

	rec := serve(a, forecastRequest(forecastBody(12)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apierrors.CodePayloadTooLarge, errorCode(t, rec))
}

func TestRouter_CORS(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Security.AllowedOrigins = []string{"http://dashboard.local"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/forecast", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(a, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://dashboard.local", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Server.ShutdownTimeout = 2 * time.Second
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
