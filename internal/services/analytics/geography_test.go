package analytics

import (
	"testing"

	"github.com/creatorpulse/creator-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geoReport(rows [][]any) *models.ReportResponse {
	return &models.ReportResponse{
		ColumnHeaders: []models.ColumnHeader{
			{Name: "country"},
			{Name: "views"},
		},
		Rows: rows,
	}
}

func TestGeographyRankingAndShares(t *testing.T) {
	breakdown := Geography(geoReport([][]any{
		{"GB", float64(300)},
		{"US", float64(550)},
		{"ZZ", float64(150)},
	}))

	require.Len(t, breakdown.Countries, 3)
	assert.Equal(t, int64(1000), breakdown.TotalViews)

	assert.Equal(t, "US", breakdown.Countries[0].Code)
	assert.Equal(t, "United States", breakdown.Countries[0].Name)
	assert.InDelta(t, 0.55, breakdown.Countries[0].ShareOfAll, 1e-9)

	// Unknown code falls back to the raw code as the display name.
	assert.Equal(t, "ZZ", breakdown.Countries[2].Name)
}

func TestGeographyPrimaryMarket(t *testing.T) {
	t.Run("dominant top country is flagged", func(t *testing.T) {
		breakdown := Geography(geoReport([][]any{
			{"US", float64(550)},
			{"GB", float64(450)},
		}))

		require.NotNil(t, breakdown.PrimaryMarket)
		assert.Equal(t, "United States", *breakdown.PrimaryMarket)
	})

	t.Run("fragmented audience has no primary market", func(t *testing.T) {
		breakdown := Geography(geoReport([][]any{
			{"US", float64(300)},
			{"GB", float64(350)},
			{"DE", float64(350)},
		}))

		assert.Nil(t, breakdown.PrimaryMarket)
	})

	t.Run("exactly at threshold is not flagged", func(t *testing.T) {
		breakdown := Geography(geoReport([][]any{
			{"US", float64(40)},
			{"GB", float64(35)},
			{"DE", float64(25)},
		}))

		assert.Nil(t, breakdown.PrimaryMarket)
	})
}

func TestGeographyEmptyReport(t *testing.T) {
	breakdown := Geography(&models.ReportResponse{})

	assert.Empty(t, breakdown.Countries)
	assert.Nil(t, breakdown.PrimaryMarket)
}
