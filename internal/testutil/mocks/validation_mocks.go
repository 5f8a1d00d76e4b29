package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
	svc "github.com/reyadahealth/doh-compliance-engine/internal/service/validation"
)

// ResultCacheMock mocks the engine's result cache
type ResultCacheMock struct {
	mock.Mock
}

func (m *ResultCacheMock) Get(ctx context.Context, fingerprint string) (*validation.ValidationResult, bool, error) {
	args := m.Called(ctx, fingerprint)
	var result *validation.ValidationResult
	if args.Get(0) != nil {
		result = args.Get(0).(*validation.ValidationResult)
	}
	return result, args.Bool(1), args.Error(2)
}

func (m *ResultCacheMock) Put(ctx context.Context, fingerprint string, result *validation.ValidationResult) error {
	args := m.Called(ctx, fingerprint, result)
	return args.Error(0)
}

func (m *ResultCacheMock) ClearExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// ResultRepositoryMock mocks result persistence
type ResultRepositoryMock struct {
	mock.Mock
}

func (m *ResultRepositoryMock) SaveResult(ctx context.Context, result *validation.ValidationResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *ResultRepositoryMock) GetResult(ctx context.Context, validationID string) (*validation.ValidationResult, error) {
	args := m.Called(ctx, validationID)
	var result *validation.ValidationResult
	if args.Get(0) != nil {
		result = args.Get(0).(*validation.ValidationResult)
	}
	return result, args.Error(1)
}

func (m *ResultRepositoryMock) ListRecent(ctx context.Context, scope string, since time.Time, limit int) ([]*validation.ValidationResult, error) {
	args := m.Called(ctx, scope, since, limit)
	var results []*validation.ValidationResult
	if args.Get(0) != nil {
		results = args.Get(0).([]*validation.ValidationResult)
	}
	return results, args.Error(1)
}

// RemoteValidatorMock mocks the external validation API client
type RemoteValidatorMock struct {
	mock.Mock
}

func (m *RemoteValidatorMock) Validate(ctx context.Context, req svc.Request) (*validation.ValidationResult, error) {
	args := m.Called(ctx, req)
	var result *validation.ValidationResult
	if args.Get(0) != nil {
		result = args.Get(0).(*validation.ValidationResult)
	}
	return result, args.Error(1)
}
