package telemetry

import (
	"net/url"
	"sync"
	"time"

	"github.com/creatorpulse/creator-backend/internal/models"
)

// Ledger holds the process-local usage counters: totals, per-host and
// per-path breakdowns, a bounded ring of recent calls and the sticky
// quota-exceeded flag. It is advisory observability data and never gates
// correctness; counters are not synchronized across processes.
type Ledger struct {
	mu           sync.Mutex
	totalCalls   int64
	totalUnits   int64
	callsByHost  map[string]int64
	callsByPath  map[string]int64
	ring         []models.RecentCall
	ringNext     int
	ringFull     bool
	quotaFlagged bool
}

func NewLedger(ringCapacity int) *Ledger {
	if ringCapacity <= 0 {
		ringCapacity = 50
	}
	return &Ledger{
		callsByHost: make(map[string]int64),
		callsByPath: make(map[string]int64),
		ring:        make([]models.RecentCall, ringCapacity),
	}
}

// Observe records one call. Unparsable URLs bucket to "unknown".
func (l *Ledger) Observe(callURL, status string, units int, quotaExceeded bool) {
	host, path := splitURL(callURL)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.totalCalls++
	l.totalUnits += int64(units)
	l.callsByHost[host]++
	l.callsByPath[path]++

	l.ring[l.ringNext] = models.RecentCall{
		URL:            callURL,
		Status:         status,
		EstimatedUnits: units,
		At:             time.Now(),
	}
	l.ringNext++
	if l.ringNext == len(l.ring) {
		l.ringNext = 0
		l.ringFull = true
	}

	if quotaExceeded {
		// Sticky; cleared only by Reset.
		l.quotaFlagged = true
	}
}

// FlagQuotaExceeded raises the sticky quota flag without recording a call.
// Used when quota exhaustion is detected from a response body rather than a
// status code.
func (l *Ledger) FlagQuotaExceeded() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quotaFlagged = true
}

// Snapshot returns a point-in-time copy of the ledger. Ring entries are
// ordered oldest first.
func (l *Ledger) Snapshot() models.LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	hosts := make(map[string]int64, len(l.callsByHost))
	for k, v := range l.callsByHost {
		hosts[k] = v
	}
	paths := make(map[string]int64, len(l.callsByPath))
	for k, v := range l.callsByPath {
		paths[k] = v
	}

	var recent []models.RecentCall
	if l.ringFull {
		recent = append(recent, l.ring[l.ringNext:]...)
		recent = append(recent, l.ring[:l.ringNext]...)
	} else {
		recent = append(recent, l.ring[:l.ringNext]...)
	}

	return models.LedgerSnapshot{
		TotalCalls:        l.totalCalls,
		TotalUnits:        l.totalUnits,
		CallsByHost:       hosts,
		CallsByPath:       paths,
		RecentCalls:       recent,
		QuotaExceededSeen: l.quotaFlagged,
	}
}

// Reset clears all counters, the ring and the sticky quota flag.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.totalCalls = 0
	l.totalUnits = 0
	l.callsByHost = make(map[string]int64)
	l.callsByPath = make(map[string]int64)
	l.ring = make([]models.RecentCall, len(l.ring))
	l.ringNext = 0
	l.ringFull = false
	l.quotaFlagged = false
}

func splitURL(callURL string) (host, path string) {
	parsed, err := url.Parse(callURL)
	if err != nil || parsed.Host == "" {
		return "unknown", "unknown"
	}
	path = parsed.Path
	if path == "" {
		path = "/"
	}
	return parsed.Host, path
}
