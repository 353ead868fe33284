package analytics

import (
	"github.com/creatorpulse/creator-backend/internal/models"
)

// Subscribers partitions report rows by the binary subscribed-status
// dimension into subscribed/unsubscribed segments with views and average
// completion, plus the subscribed segment's share of total views.
func Subscribers(report *models.ReportResponse) models.SubscriberSplit {
	split := models.SubscriberSplit{}
	if report.Empty() {
		return split
	}

	statusCol := report.ColumnIndex("subscribedStatus")
	viewsCol := report.ColumnIndex("views")
	completionCol := report.ColumnIndex("averageViewPercentage")
	if statusCol < 0 || viewsCol < 0 {
		return split
	}

	for i := range report.Rows {
		segment := models.SubscriberSegment{
			Views: int64(report.CellFloat(i, viewsCol)),
		}
		if completionCol >= 0 {
			segment.AvgCompletion = report.CellFloat(i, completionCol)
		}

		if report.CellString(i, statusCol) == "SUBSCRIBED" {
			split.Subscribed = segment
		} else {
			split.NotSubscribed = segment
		}
	}

	total := split.Subscribed.Views + split.NotSubscribed.Views
	if total > 0 {
		split.SubscribedShare = float64(split.Subscribed.Views) / float64(total)
	}

	return split
}

// Demographics maps report rows (dimensions: ageGroup, gender; metric:
// viewerPercentage) into the demographic split.
func Demographics(report *models.ReportResponse) models.DemographicSplit {
	split := models.DemographicSplit{}
	if report.Empty() {
		return split
	}

	ageCol := report.ColumnIndex("ageGroup")
	genderCol := report.ColumnIndex("gender")
	pctCol := report.ColumnIndex("viewerPercentage")
	if ageCol < 0 || genderCol < 0 || pctCol < 0 {
		return split
	}

	for i := range report.Rows {
		split.Slices = append(split.Slices, models.DemographicSlice{
			AgeGroup:   report.CellString(i, ageCol),
			Gender:     report.CellString(i, genderCol),
			Percentage: report.CellFloat(i, pctCol),
		})
	}

	return split
}
