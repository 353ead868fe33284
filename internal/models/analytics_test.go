package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeRangePrevious(t *testing.T) {
	current := TimeRange{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	}

	previous := current.Previous()

	// Adjacent, same length, ending the day before the current window starts.
	assert.Equal(t, "2026-07-31", previous.EndDate())
	assert.Equal(t, "2026-07-04", previous.StartDate())
	assert.Equal(t, current.End.Sub(current.Start), previous.End.Sub(previous.Start))
}

func TestLastDays(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tr := LastDays(7, now)

	assert.Equal(t, "2026-08-25", tr.StartDate())
	assert.Equal(t, "2026-08-31", tr.EndDate())
}

func TestReportResponseCells(t *testing.T) {
	report := &ReportResponse{
		ColumnHeaders: []ColumnHeader{{Name: "country"}, {Name: "views"}},
		Rows:          [][]any{{"US", float64(42)}},
	}

	assert.Equal(t, 1, report.ColumnIndex("views"))
	assert.Equal(t, -1, report.ColumnIndex("missing"))
	assert.Equal(t, "US", report.CellString(0, 0))
	assert.Equal(t, 42.0, report.CellFloat(0, 1))

	// Out-of-bounds access is safe.
	assert.Zero(t, report.CellFloat(5, 1))
	assert.Empty(t, report.CellString(0, 9))
	assert.False(t, report.Empty())
	assert.True(t, (&ReportResponse{}).Empty())
}
