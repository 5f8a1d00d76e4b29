package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/standards"
	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/config"
	svc "github.com/reyadahealth/doh-compliance-engine/internal/service/validation"
	"github.com/reyadahealth/doh-compliance-engine/internal/testutil"
	"github.com/reyadahealth/doh-compliance-engine/internal/testutil/fixtures"
)

type testServer struct {
	*httptest.Server
	auth   *AuthMiddleware
	engine *svc.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Version:     "test",
		Environment: "test",
		Server: config.ServerConfig{
			Port:            0,
			ShutdownTimeout: time.Second,
		},
		Security: config.SecurityConfig{
			JWTSecret:   "test-secret",
			TokenExpiry: time.Hour,
			RateLimit:   config.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 1000},
		},
	}

	catalog, err := standards.LoadDefault()
	require.NoError(t, err)

	zapLogger := zaptest.NewLogger(t)
	engine := svc.NewEngine(zapLogger, catalog, svc.DefaultEngineConfig())
	batch := svc.NewBatchValidator(zapLogger, engine, nil, 2)
	queue := svc.NewBatchQueue(zapLogger, batch, nil, 10*time.Millisecond, 5*time.Second)
	reporter := svc.NewReporter(zapLogger, engine, nil)

	auth := NewAuthMiddleware(AuthConfig{
		JWTSecret:   []byte(cfg.Security.JWTSecret),
		TokenExpiry: cfg.Security.TokenExpiry,
	})
	handler := NewHandler(engine, batch, queue, reporter, nil, nil)
	server := NewServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), handler, auth, nil)

	ts := httptest.NewServer(server.routes())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, auth: auth, engine: engine}
}

func (ts *testServer) request(t *testing.T, method, path string, body interface{}, authed bool) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		token, err := ts.auth.IssueToken("nurse-001", "Test Nurse", "clinician")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func dataField(t *testing.T, env envelope) map[string]interface{} {
	t.Helper()
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok, "data must be a JSON object")
	return data
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "ok", dataField(t, env)["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_AuthRequired(t *testing.T) {
	ts := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		resp := ts.request(t, http.MethodGet, "/api/v1/compliance/status", nil, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/compliance/status", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer not-a-token")
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestServer_Validate(t *testing.T) {
	ts := newTestServer(t)

	t.Run("complete form", func(t *testing.T) {
		body := map[string]interface{}{
			"form_data": fixtures.CompleteForm(t),
			"form_type": "nursing_assessment",
		}
		resp := ts.request(t, http.MethodPost, "/api/v1/validations", body, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		require.True(t, env.Success)
		data := dataField(t, env)
		assert.Equal(t, "compliant", data["overall_status"])
		assert.Equal(t, "nurse-001", data["validated_by"], "caller identity stamps the result")

		score, ok := data["compliance_score"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(100), score["percentage"])
		assert.Equal(t, "A", score["grade"])
	})

	t.Run("empty form scores zero but succeeds", func(t *testing.T) {
		body := map[string]interface{}{
			"form_data": map[string]interface{}{},
			"form_type": "fall_risk_assessment",
		}
		resp := ts.request(t, http.MethodPost, "/api/v1/validations", body, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		require.True(t, env.Success)
		assert.Equal(t, "non_compliant", dataField(t, env)["overall_status"])
	})

	t.Run("missing form type", func(t *testing.T) {
		body := map[string]interface{}{
			"form_data": fixtures.CompleteForm(t),
		}
		resp := ts.request(t, http.MethodPost, "/api/v1/validations", body, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	})

	t.Run("invalid scope enum", func(t *testing.T) {
		body := map[string]interface{}{
			"form_data":        fixtures.CompleteForm(t),
			"form_type":        "nursing_assessment",
			"validation_scope": "galaxy",
		}
		resp := ts.request(t, http.MethodPost, "/api/v1/validations", body, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed json", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/validations", bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		token, err := ts.auth.IssueToken("nurse-001", "Test Nurse", "clinician")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_GetValidation(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]interface{}{
		"form_data": fixtures.CompleteForm(t),
		"form_type": "nursing_assessment",
	}
	resp := ts.request(t, http.MethodPost, "/api/v1/validations", body, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validationID := dataField(t, decodeEnvelope(t, resp))["validation_id"].(string)

	t.Run("found in history", func(t *testing.T) {
		resp := ts.request(t, http.MethodGet, "/api/v1/validations/"+validationID, nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, validationID, dataField(t, decodeEnvelope(t, resp))["validation_id"])
	})

	t.Run("unknown id", func(t *testing.T) {
		resp := ts.request(t, http.MethodGet, "/api/v1/validations/does-not-exist", nil, true)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServer_BatchValidate(t *testing.T) {
	ts := newTestServer(t)

	makeItems := func(n int) []map[string]interface{} {
		items := make([]map[string]interface{}, n)
		for i := range items {
			items[i] = map[string]interface{}{
				"item_id": fmt.Sprintf("item-%d", i),
				"request": map[string]interface{}{
					"form_data": fixtures.CompleteForm(t),
					"form_type": "nursing_assessment",
				},
			}
		}
		return items
	}

	t.Run("synchronous", func(t *testing.T) {
		resp := ts.request(t, http.MethodPost, "/api/v1/validations/batch",
			map[string]interface{}{"items": makeItems(3)}, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		data := dataField(t, decodeEnvelope(t, resp))
		assert.Equal(t, float64(3), data["total_items"])
		assert.Equal(t, float64(3), data["successful_validations"])
	})

	t.Run("queued", func(t *testing.T) {
		resp := ts.request(t, http.MethodPost, "/api/v1/validations/batch",
			map[string]interface{}{"items": makeItems(2), "queued": true}, true)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)

		data := dataField(t, decodeEnvelope(t, resp))
		batchID, ok := data["batch_id"].(string)
		require.True(t, ok)

		testutil.AssertEventually(t, func() bool {
			resp := ts.request(t, http.MethodGet, "/api/v1/validations/batch/"+batchID, nil, true)
			if resp.StatusCode != http.StatusOK {
				return false
			}
			status := dataField(t, decodeEnvelope(t, resp))
			return status["state"] == svc.QueueStateCompleted
		}, 5*time.Second, 20*time.Millisecond)
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		resp := ts.request(t, http.MethodPost, "/api/v1/validations/batch",
			map[string]interface{}{"items": []interface{}{}}, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_ComplianceStatusAndReports(t *testing.T) {
	ts := newTestServer(t)

	t.Run("status before any run", func(t *testing.T) {
		resp := ts.request(t, http.MethodGet, "/api/v1/compliance/status", nil, true)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	body := map[string]interface{}{
		"form_data": fixtures.CompleteForm(t),
		"form_type": "nursing_assessment",
	}
	resp := ts.request(t, http.MethodPost, "/api/v1/validations", body, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("status after a run", func(t *testing.T) {
		resp := ts.request(t, http.MethodGet, "/api/v1/compliance/status", nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		data := dataField(t, decodeEnvelope(t, resp))
		assert.Equal(t, float64(1), data["run_count"])
		assert.Equal(t, float64(100), data["average_score"])
	})

	t.Run("generate and fetch report", func(t *testing.T) {
		resp := ts.request(t, http.MethodPost, "/api/v1/compliance/reports", map[string]interface{}{}, true)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		data := dataField(t, decodeEnvelope(t, resp))
		reportURL, ok := data["report_url"].(string)
		require.True(t, ok)

		resp = ts.request(t, http.MethodGet, reportURL, nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		report := dataField(t, decodeEnvelope(t, resp))
		assert.Equal(t, "compliant", report["overall_status"])
	})

	t.Run("unknown report", func(t *testing.T) {
		resp := ts.request(t, http.MethodGet, "/api/v1/compliance/reports/missing", nil, true)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("analytics", func(t *testing.T) {
		resp := ts.request(t, http.MethodGet, "/api/v1/compliance/analytics?days=7", nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		data := dataField(t, decodeEnvelope(t, resp))
		assert.Equal(t, float64(1), data["run_count"])
	})
}

func TestServer_ClearCacheWithoutCache(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/v1/admin/cache/clear", nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), dataField(t, decodeEnvelope(t, resp))["deleted"])
}
