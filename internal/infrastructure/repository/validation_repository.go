package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	domainErrors "github.com/reyadahealth/doh-compliance-engine/internal/domain/errors"
	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/config"
)

// ValidationRepository persists completed validation results in
// PostgreSQL. The full result is stored as JSONB alongside extracted
// columns for reporting queries.
type ValidationRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewValidationRepository connects a repository to the database.
func NewValidationRepository(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*ValidationRepository, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("validation repository initialized")
	return &ValidationRepository{pool: pool, logger: logger}, nil
}

// NewValidationRepositoryWithPool wraps an existing pool, used by tests.
func NewValidationRepositoryWithPool(pool *pgxpool.Pool, logger *zap.Logger) *ValidationRepository {
	return &ValidationRepository{pool: pool, logger: logger}
}

// SaveResult inserts one completed validation result.
func (r *ValidationRepository) SaveResult(ctx context.Context, result *validation.ValidationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling validation result: %w", err)
	}

	query := `
		INSERT INTO validation_results (
			validation_id, validation_type, validation_scope, validated_by,
			overall_status, score_percentage, grade, critical_findings,
			validation_date, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.pool.Exec(ctx, query,
		result.ValidationID,
		result.ValidationType,
		result.ValidationScope,
		result.ValidatedBy,
		string(result.OverallStatus),
		result.ComplianceScore.Percentage,
		result.ComplianceScore.Grade,
		len(result.CriticalFindings),
		result.ValidationDate,
		payload,
	)
	if err != nil {
		return fmt.Errorf("inserting validation result: %w", err)
	}
	return nil
}

// GetResult retrieves one result by validation id.
func (r *ValidationRepository) GetResult(ctx context.Context, validationID string) (*validation.ValidationResult, error) {
	query := `SELECT payload FROM validation_results WHERE validation_id = $1`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, validationID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrResultNotFound
		}
		return nil, fmt.Errorf("querying validation result: %w", err)
	}

	var result validation.ValidationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshaling validation result: %w", err)
	}
	return &result, nil
}

// ListRecent returns results for a scope since the given time, newest
// first. An empty scope matches every scope.
func (r *ValidationRepository) ListRecent(ctx context.Context, scope string, since time.Time, limit int) ([]*validation.ValidationResult, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT payload FROM validation_results
		WHERE ($1 = '' OR validation_scope = $1) AND validation_date >= $2
		ORDER BY validation_date DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, scope, since, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent validation results: %w", err)
	}
	defer rows.Close()

	var results []*validation.ValidationResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning validation result: %w", err)
		}
		var result validation.ValidationResult
		if err := json.Unmarshal(payload, &result); err != nil {
			r.logger.Warn("skipping undecodable validation result", zap.Error(err))
			continue
		}
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating validation results: %w", err)
	}
	return results, nil
}

// Close releases the connection pool.
func (r *ValidationRepository) Close() {
	r.pool.Close()
}
