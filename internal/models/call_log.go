package models

import "time"

// APICallLog is the durable append-only record of one outbound provider
// call. Writing it is best-effort; the dashboard never depends on it.
type APICallLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	URL            string    `gorm:"not null;type:text" json:"url"`
	Host           string    `gorm:"not null;size:255;index;default:''" json:"host"`
	Path           string    `gorm:"not null;size:255;index;default:''" json:"path"`
	Status         string    `gorm:"not null;size:50;default:''" json:"status"`
	EstimatedUnits int       `gorm:"not null;default:0" json:"estimated_units"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (APICallLog) TableName() string {
	return "api_call_log"
}

// RecentCall is one entry of the in-memory diagnostics ring buffer.
type RecentCall struct {
	URL            string    `json:"url"`
	Status         string    `json:"status"`
	EstimatedUnits int       `json:"estimated_units"`
	At             time.Time `json:"at"`
}

// LedgerSnapshot is a point-in-time copy of the in-memory usage ledger.
// Counters are process-local and advisory; they never gate correctness.
type LedgerSnapshot struct {
	TotalCalls        int64            `json:"total_calls"`
	TotalUnits        int64            `json:"total_units"`
	CallsByHost       map[string]int64 `json:"calls_by_host"`
	CallsByPath       map[string]int64 `json:"calls_by_path"`
	RecentCalls       []RecentCall     `json:"recent_calls"`
	QuotaExceededSeen bool             `json:"quota_exceeded_seen"`
}
