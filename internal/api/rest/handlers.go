package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	domainErrors "github.com/reyadahealth/doh-compliance-engine/internal/domain/errors"
	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/cache"
	svc "github.com/reyadahealth/doh-compliance-engine/internal/service/validation"
)

// Handler serves the compliance validation API.
type Handler struct {
	engine    *svc.Engine
	batch     *svc.BatchValidator
	queue     *svc.BatchQueue
	reporter  *svc.Reporter
	repo      svc.ResultRepository
	resultTTL *cache.ValidationCache
}

// NewHandler wires the API handler to its services. repo and resultTTL
// may be nil when persistence or caching is disabled.
func NewHandler(engine *svc.Engine, batch *svc.BatchValidator, queue *svc.BatchQueue, reporter *svc.Reporter, repo svc.ResultRepository, resultCache *cache.ValidationCache) *Handler {
	return &Handler{
		engine:    engine,
		batch:     batch,
		queue:     queue,
		reporter:  reporter,
		repo:      repo,
		resultTTL: resultCache,
	}
}

// HandleValidate runs a single compliance validation.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		handleError(w, err)
		return
	}

	userID, role := callerIdentity(r.Context())
	result, err := h.engine.Validate(r.Context(), req.ToServiceRequest(userID, role))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleBatchValidate runs a batch synchronously, or enqueues it for
// background processing when queued is set.
func (h *Handler) HandleBatchValidate(w http.ResponseWriter, r *http.Request) {
	var req BatchValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		handleError(w, err)
		return
	}

	userID, role := callerIdentity(r.Context())
	items := make([]svc.BatchItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, svc.BatchItem{
			ItemID:  item.ItemID,
			Request: item.Request.ToServiceRequest(userID, role),
		})
	}

	if req.Queued {
		// Detach from the request context: the batch outlives it.
		batchID, err := h.queue.Enqueue(context.WithoutCancel(r.Context()), items)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"batch_id": batchID, "state": svc.QueueStateQueued})
		return
	}

	result, err := h.batch.ValidateBatch(r.Context(), items)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleBatchStatus returns the state of a queued batch.
func (h *Handler) HandleBatchStatus(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("id")
	status, ok := h.queue.Status(batchID)
	if !ok {
		handleError(w, domainErrors.NewNotFoundError("batch"))
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandleGetValidation retrieves a completed validation result.
func (h *Handler) HandleGetValidation(w http.ResponseWriter, r *http.Request) {
	validationID := r.PathValue("id")
	for _, res := range h.engine.History().Recent() {
		if res.ValidationID == validationID {
			writeJSON(w, http.StatusOK, res)
			return
		}
	}
	if h.repo != nil {
		result, err := h.repo.GetResult(r.Context(), validationID)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}
	handleError(w, domainErrors.ErrResultNotFound)
}

// HandleComplianceStatus summarizes the latest authoritative run and
// the history trend.
func (h *Handler) HandleComplianceStatus(w http.ResponseWriter, r *http.Request) {
	latest := h.engine.LatestResult()
	if latest == nil {
		handleError(w, domainErrors.ErrResultNotFound)
		return
	}
	history := h.engine.History()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"latest":        latest,
		"average_score": history.Average(),
		"trend":         history.Trend(),
		"run_count":     history.Len(),
	})
}

// HandleGenerateReport creates a compliance report for a run.
func (h *Handler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, err)
		return
	}
	userID, _ := callerIdentity(r.Context())
	report, err := h.reporter.GenerateReport(r.Context(), req.ValidationID, userID)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"report_id":  report.ReportID,
		"report_url": "/api/v1/compliance/reports/" + report.ReportID,
	})
}

// HandleGetReport retrieves a generated report.
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reporter.GetReport(r.PathValue("id"))
	if !ok {
		handleError(w, domainErrors.NewNotFoundError("report"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleAnalytics aggregates compliance analytics over a window.
func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			days = parsed
		}
	}
	analytics, err := h.reporter.Analytics(r.Context(), scope, time.Now().AddDate(0, 0, -days))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// HandleClearCache invalidates cached validation results.
func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	if h.resultTTL == nil {
		writeJSON(w, http.StatusOK, map[string]int{"deleted": 0})
		return
	}
	deleted, err := h.resultTTL.InvalidateAll(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
