package models

import (
	"fmt"
	"time"
)

// TimeRange is an inclusive calendar-date window for a report query.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Previous returns the adjacent window of equal length immediately before
// the range, used for period-over-period trends.
func (r TimeRange) Previous() TimeRange {
	length := r.End.Sub(r.Start)
	return TimeRange{
		Start: r.Start.Add(-length - 24*time.Hour),
		End:   r.Start.Add(-24 * time.Hour),
	}
}

func (r TimeRange) StartDate() string { return r.Start.Format("2006-01-02") }
func (r TimeRange) EndDate() string   { return r.End.Format("2006-01-02") }

// LastDays builds a range covering the n days ending yesterday.
func LastDays(n int, now time.Time) TimeRange {
	end := now.AddDate(0, 0, -1)
	return TimeRange{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// ColumnHeader describes one column of a tabular report response.
type ColumnHeader struct {
	Name       string `json:"name"`
	ColumnType string `json:"columnType"`
	DataType   string `json:"dataType"`
}

// ReportResponse is the raw tabular payload of a reports query: an ordered
// set of named columns plus zero or more rows of mixed string/number cells.
// Zero rows is valid and means "no data for the period", not an error.
type ReportResponse struct {
	Kind          string         `json:"kind,omitzero"`
	ColumnHeaders []ColumnHeader `json:"columnHeaders"`
	Rows          [][]any        `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1.
func (r *ReportResponse) ColumnIndex(name string) int {
	for i, h := range r.ColumnHeaders {
		if h.Name == name {
			return i
		}
	}
	return -1
}

// Empty reports whether the response carries no rows.
func (r *ReportResponse) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// CellString coerces the cell at (row, col) to a string.
func (r *ReportResponse) CellString(row, col int) string {
	if col < 0 || row >= len(r.Rows) || col >= len(r.Rows[row]) {
		return ""
	}
	if s, ok := r.Rows[row][col].(string); ok {
		return s
	}
	return fmt.Sprintf("%v", r.Rows[row][col])
}

// CellFloat coerces the cell at (row, col) to a float64. JSON numbers decode
// as float64; everything else coerces to zero.
func (r *ReportResponse) CellFloat(row, col int) float64 {
	if col < 0 || row >= len(r.Rows) || col >= len(r.Rows[row]) {
		return 0
	}
	switch v := r.Rows[row][col].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// FieldSet is one candidate shape for a degrading report query. Candidates
// are ordered richest to minimal; the minimal set must only need the baseline
// readonly grant.
type FieldSet struct {
	Name       string
	Metrics    []string
	Dimensions []string
	Sort       string
	MaxResults int
}

// PermissionStatus distinguishes "no data, totally fine" from "we never got
// to ask" after a degrading fetch. It travels alongside the rows, not inside
// an error.
type PermissionStatus string

const (
	PermissionStatusOK     PermissionStatus = "ok"
	PermissionStatusDenied PermissionStatus = "permission_denied"
)

// TokenResponse is the provider token-endpoint payload for a refresh
// exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitzero"`
	TokenType   string `json:"token_type,omitzero"`
}
