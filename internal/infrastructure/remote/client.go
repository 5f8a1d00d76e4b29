package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/reyadahealth/doh-compliance-engine/internal/domain/errors"
	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
	svc "github.com/reyadahealth/doh-compliance-engine/internal/service/validation"
)

// Client calls the external validation API. Every failure here is
// recoverable: the engine falls back to local computation, which runs
// the identical algorithm.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

var _ svc.RemoteValidator = (*Client)(nil)

// NewClient creates a client for the validation API at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// envelope mirrors the validation API's uniform response wrapper.
type envelope struct {
	Success bool                         `json:"success"`
	Data    *validation.ValidationResult `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Validate submits the request to the remote engine and decodes its
// result.
func (c *Client) Validate(ctx context.Context, req svc.Request) (*validation.ValidationResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding validation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/validations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building validation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, domainErrors.NewExternalError("validation_api", err.Error()).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domainErrors.NewExternalError("validation_api", fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, domainErrors.NewExternalError("validation_api", "undecodable response").WithCause(err)
	}
	if !env.Success || env.Data == nil {
		message := "remote validation rejected the request"
		if env.Error != nil {
			message = env.Error.Message
		}
		return nil, domainErrors.NewExternalError("validation_api", message)
	}

	c.logger.Debug("remote validation succeeded",
		zap.String("validation_id", env.Data.ValidationID),
		zap.String("status", string(env.Data.OverallStatus)))
	return env.Data, nil
}
