package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domainErrors "github.com/reyadahealth/doh-compliance-engine/internal/domain/errors"
	domainvalidation "github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
	svc "github.com/reyadahealth/doh-compliance-engine/internal/service/validation"
	"github.com/reyadahealth/doh-compliance-engine/internal/testutil"
	"github.com/reyadahealth/doh-compliance-engine/internal/testutil/fixtures"
	"github.com/reyadahealth/doh-compliance-engine/internal/testutil/mocks"
)

func newBatchQueue(t *testing.T, pollInterval, maxWait time.Duration, opts ...svc.EngineOption) *svc.BatchQueue {
	t.Helper()
	engine := newTestEngine(t, defaultCatalog(t), opts...)
	validator := svc.NewBatchValidator(zaptest.NewLogger(t), engine, nil, 2)
	return svc.NewBatchQueue(zaptest.NewLogger(t), validator, nil, pollInterval, maxWait)
}

func TestBatchQueue_EnqueueAndWait(t *testing.T) {
	queue := newBatchQueue(t, 10*time.Millisecond, 5*time.Second)
	ctx := testutil.TestContext(t)

	batchID, err := queue.Enqueue(ctx, batchItems(t, 4))
	require.NoError(t, err)
	require.NotEmpty(t, batchID)

	status, err := queue.Wait(ctx, batchID)
	require.NoError(t, err)

	assert.Equal(t, svc.QueueStateCompleted, status.State)
	assert.Equal(t, 4, status.Total)
	assert.Equal(t, 4, status.Processed)
	assert.Equal(t, 4, status.Succeeded)
	assert.Zero(t, status.Failed)
	require.NotNil(t, status.Result)
	assert.Len(t, status.Result.Items, 4)
	assert.Equal(t, domainvalidation.StatusCompliant, status.Result.Items[0].Result.OverallStatus)
}

func TestBatchQueue_StatusSnapshot(t *testing.T) {
	queue := newBatchQueue(t, 10*time.Millisecond, 5*time.Second)
	ctx := testutil.TestContext(t)

	batchID, err := queue.Enqueue(ctx, batchItems(t, 1))
	require.NoError(t, err)

	testutil.AssertEventually(t, func() bool {
		status, ok := queue.Status(batchID)
		return ok && status.State == svc.QueueStateCompleted
	}, 5*time.Second, 10*time.Millisecond)

	_, ok := queue.Status("unknown-batch")
	assert.False(t, ok)
}

func TestBatchQueue_EnqueueEmptyBatch(t *testing.T) {
	queue := newBatchQueue(t, 10*time.Millisecond, time.Second)

	_, err := queue.Enqueue(testutil.TestContext(t), nil)
	require.Error(t, err)

	var appErr *domainErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "EMPTY_BATCH", appErr.Code)
}

func TestBatchQueue_WaitUnknownBatch(t *testing.T) {
	queue := newBatchQueue(t, 10*time.Millisecond, time.Second)

	_, err := queue.Wait(testutil.TestContext(t), "no-such-batch")
	require.Error(t, err)

	var appErr *domainErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestBatchQueue_WaitBoundElapses(t *testing.T) {
	// A remote validator that never returns keeps the batch processing
	// past the wait bound.
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	remote := new(mocks.RemoteValidatorMock)
	remote.On("Validate", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(resultWithScore("slow", 80, domainvalidation.StatusCompliant), nil)

	queue := newBatchQueue(t, 5*time.Millisecond, 50*time.Millisecond, svc.WithRemoteValidator(remote))
	ctx := testutil.TestContext(t)

	items := []svc.BatchItem{{
		ItemID:  "item-0",
		Request: validateRequest(fixtures.CompleteForm(t), "nursing_assessment"),
	}}
	batchID, err := queue.Enqueue(ctx, items)
	require.NoError(t, err)

	status, err := queue.Wait(ctx, batchID)
	require.Error(t, err)
	assert.NotEqual(t, svc.QueueStateCompleted, status.State)
}
