package telemetry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerObserveCounters(t *testing.T) {
	ledger := NewLedger(10)

	ledger.Observe("https://api.example.com/v2/reports?ids=a", "200", 1, false)
	ledger.Observe("https://api.example.com/v2/reports?ids=b", "200", 1, false)
	ledger.Observe("https://www.example.com/v3/search?q=x", "200", 100, false)

	snap := ledger.Snapshot()

	assert.Equal(t, int64(3), snap.TotalCalls)
	assert.Equal(t, int64(102), snap.TotalUnits)
	assert.Equal(t, int64(2), snap.CallsByHost["api.example.com"])
	assert.Equal(t, int64(1), snap.CallsByHost["www.example.com"])
	assert.Equal(t, int64(2), snap.CallsByPath["/v2/reports"])
	assert.False(t, snap.QuotaExceededSeen)
}

func TestLedgerUnparsableURL(t *testing.T) {
	ledger := NewLedger(10)

	ledger.Observe("://not-a-url", "200", 1, false)

	snap := ledger.Snapshot()
	assert.Equal(t, int64(1), snap.CallsByHost["unknown"])
	assert.Equal(t, int64(1), snap.CallsByPath["unknown"])
}

func TestLedgerRingWraparound(t *testing.T) {
	ledger := NewLedger(3)

	for i := range 5 {
		ledger.Observe(fmt.Sprintf("https://h.example.com/call/%d", i), "200", 1, false)
	}

	snap := ledger.Snapshot()

	// Only the last 3 calls survive, oldest first.
	require.Len(t, snap.RecentCalls, 3)
	assert.Equal(t, "https://h.example.com/call/2", snap.RecentCalls[0].URL)
	assert.Equal(t, "https://h.example.com/call/4", snap.RecentCalls[2].URL)
	assert.Equal(t, int64(5), snap.TotalCalls)
}

func TestLedgerQuotaFlagSticky(t *testing.T) {
	ledger := NewLedger(10)

	ledger.Observe("https://api.example.com/v2/reports", "429", 1, true)
	assert.True(t, ledger.Snapshot().QuotaExceededSeen)

	// Successes after the flag do not clear it.
	ledger.Observe("https://api.example.com/v2/reports", "200", 1, false)
	assert.True(t, ledger.Snapshot().QuotaExceededSeen)

	ledger.Reset()
	snap := ledger.Snapshot()
	assert.False(t, snap.QuotaExceededSeen)
	assert.Zero(t, snap.TotalCalls)
	assert.Empty(t, snap.RecentCalls)
}

func TestLedgerFlagQuotaExceeded(t *testing.T) {
	ledger := NewLedger(10)

	ledger.FlagQuotaExceeded()

	snap := ledger.Snapshot()
	assert.True(t, snap.QuotaExceededSeen)
	assert.Zero(t, snap.TotalCalls)
}

func TestRecorderFlagsQuotaFromStatus(t *testing.T) {
	ledger := NewLedger(10)
	recorder := NewRecorder(ledger, nil)

	recorder.Record("https://api.example.com/v2/reports", "200", 1)
	assert.False(t, ledger.Snapshot().QuotaExceededSeen)

	recorder.Record("https://api.example.com/v2/reports", "429", 1)
	assert.True(t, ledger.Snapshot().QuotaExceededSeen)
}
