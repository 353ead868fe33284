package telemetry

import (
	"net/http"
	"strconv"

	"github.com/creatorpulse/creator-backend/internal/models"
)

// Recorder is the fire-and-forget telemetry entry point the executor talks
// to. It updates the in-memory ledger synchronously (cheap, lock-bounded)
// and hands the durable append to the worker pool. It never blocks and never
// propagates a failure to the caller.
type Recorder struct {
	ledger *Ledger
	worker *Worker
}

// NewRecorder wires the ledger to an optional persistence worker. A nil
// worker leaves the recorder purely in-memory.
func NewRecorder(ledger *Ledger, worker *Worker) *Recorder {
	return &Recorder{
		ledger: ledger,
		worker: worker,
	}
}

// Record observes one outbound call.
func (r *Recorder) Record(callURL, status string, estimatedUnits int) {
	quotaExceeded := status == strconv.Itoa(http.StatusTooManyRequests) || isQuotaStatus(status)

	r.ledger.Observe(callURL, status, estimatedUnits, quotaExceeded)

	if r.worker != nil {
		host, path := splitURL(callURL)
		r.worker.Submit(models.APICallLog{
			URL:            callURL,
			Host:           host,
			Path:           path,
			Status:         status,
			EstimatedUnits: estimatedUnits,
		})
	}
}

// FlagQuotaExceeded raises the sticky quota flag. The executor calls this
// when a response classifies as quota exhaustion under a non-429 status.
func (r *Recorder) FlagQuotaExceeded() {
	r.ledger.FlagQuotaExceeded()
}

// Ledger exposes the underlying ledger for snapshots and resets.
func (r *Recorder) Ledger() *Ledger {
	return r.ledger
}

// isQuotaStatus recognizes the quota classification markers the executor
// may report instead of a bare status code.
func isQuotaStatus(status string) bool {
	return status == "quota_exceeded" || status == "429"
}
