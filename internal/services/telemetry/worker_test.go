package telemetry

import (
	"testing"

	"github.com/creatorpulse/creator-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRecordSurvivesDurableLogFailure(t *testing.T) {
	// Zero workers drain nothing, so the tiny buffer fills after one entry
	// and later submissions exercise every drop branch.
	ledger := NewLedger(5)
	worker := NewWorker(nil, 0, 1)
	recorder := NewRecorder(ledger, worker)

	recorder.Record("https://api.example.com/v2/reports", "200", 1)
	recorder.Record("https://api.example.com/v2/reports", "200", 1)

	worker.Stop()
	recorder.Record("https://api.example.com/v2/reports", "500", 1)

	// Every call returned promptly and the ledger counted all of them even
	// though none reached the durable log.
	snap := ledger.Snapshot()
	assert.Equal(t, int64(3), snap.TotalCalls)
	assert.Equal(t, int64(3), snap.TotalUnits)
	assert.Len(t, snap.RecentCalls, 3)
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	worker := NewWorker(nil, 0, 1)
	worker.Stop()
	worker.Stop()

	worker.Submit(models.APICallLog{URL: "https://api.example.com/v2/reports", Status: "200"})
}
