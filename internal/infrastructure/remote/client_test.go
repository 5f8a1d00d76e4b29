package remote_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domainErrors "github.com/reyadahealth/doh-compliance-engine/internal/domain/errors"
	domainvalidation "github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/remote"
	svc "github.com/reyadahealth/doh-compliance-engine/internal/service/validation"
	"github.com/reyadahealth/doh-compliance-engine/internal/testutil"
	"github.com/reyadahealth/doh-compliance-engine/internal/testutil/fixtures"
)

func remoteRequest(t *testing.T) svc.Request {
	t.Helper()
	return svc.Request{
		FormData:        fixtures.CompleteForm(t),
		FormType:        "nursing_assessment",
		ValidationType:  "doh_compliance",
		ValidationScope: "single_form",
		ValidatedBy:     "nurse-001",
	}
}

func TestClient_Validate(t *testing.T) {
	result := &domainvalidation.ValidationResult{
		ValidationID:    "remote-run",
		OverallStatus:   domainvalidation.StatusCompliant,
		ComplianceScore: domainvalidation.ComplianceScore{Total: 180, MaxTotal: 180, Percentage: 100, Grade: "A"},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/validations", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req svc.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nursing_assessment", req.FormType)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": result})
	}))
	t.Cleanup(server.Close)

	client := remote.NewClient(server.URL, time.Second, zaptest.NewLogger(t))
	got, err := client.Validate(testutil.TestContext(t), remoteRequest(t))
	require.NoError(t, err)
	assert.Equal(t, result, got)
}

func TestClient_Validate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "error envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"error":   map[string]string{"code": "STANDARDS_NOT_READY", "message": "catalog loading"},
				})
			},
		},
		{
			name: "success without data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
			},
		},
		{
			name: "undecodable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			t.Cleanup(server.Close)

			client := remote.NewClient(server.URL, time.Second, zaptest.NewLogger(t))
			_, err := client.Validate(testutil.TestContext(t), remoteRequest(t))
			require.Error(t, err)
			assert.True(t, domainErrors.IsType(err, domainErrors.ErrorTypeExternal), "remote failures are external errors")
			assert.True(t, domainErrors.IsRetryable(err))
		})
	}
}

func TestClient_Validate_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := remote.NewClient(server.URL, time.Second, zaptest.NewLogger(t))
	_, err := client.Validate(testutil.TestContext(t), remoteRequest(t))
	require.Error(t, err)
	assert.True(t, domainErrors.IsType(err, domainErrors.ErrorTypeExternal))
}
