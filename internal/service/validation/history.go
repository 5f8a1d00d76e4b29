package validation

import (
	"sync"

	"github.com/reyadahealth/doh-compliance-engine/internal/domain/validation"
)

// DefaultHistorySize bounds the in-memory run history.
const DefaultHistorySize = 5

// Trend describes the direction of the running average score.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// History keeps the most recent validation results, newest first, with
// a running average score and its trend. Updates are atomic per run:
// readers never observe a partially applied append.
type History struct {
	mu      sync.RWMutex
	max     int
	entries []*validation.ValidationResult
	average float64
	trend   Trend
}

// NewHistory creates a bounded history. Sizes below 1 fall back to the
// default.
func NewHistory(max int) *History {
	if max < 1 {
		max = DefaultHistorySize
	}
	return &History{max: max, trend: TrendStable}
}

// Add records a completed run, evicting the oldest entry when full, and
// recomputes the running average and trend.
func (h *History) Add(result *validation.ValidationResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append([]*validation.ValidationResult{result}, h.entries...)
	if len(h.entries) > h.max {
		h.entries = h.entries[:h.max]
	}

	prev := h.average
	sum := 0
	for _, e := range h.entries {
		sum += e.ComplianceScore.Percentage
	}
	h.average = float64(sum) / float64(len(h.entries))

	switch {
	case len(h.entries) == 1 || h.average == prev:
		h.trend = TrendStable
	case h.average > prev:
		h.trend = TrendUp
	default:
		h.trend = TrendDown
	}
}

// Recent returns a copy of the history, newest first.
func (h *History) Recent() []*validation.ValidationResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*validation.ValidationResult, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of recorded runs.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Average returns the running average score.
func (h *History) Average() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.average
}

// Trend returns the direction of the running average.
func (h *History) Trend() Trend {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.trend
}

// PassRate returns the share of recorded runs with compliant status.
func (h *History) PassRate() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return 0
	}
	pass := 0
	for _, e := range h.entries {
		if e.OverallStatus == validation.StatusCompliant {
			pass++
		}
	}
	return float64(pass) / float64(len(h.entries))
}
