package analytics

import (
	"sort"

	"github.com/creatorpulse/creator-backend/internal/models"
)

// primaryMarketThreshold is the dominance share above which the top country
// is flagged as the primary market.
const primaryMarketThreshold = 0.40

// countryNames resolves common ISO 3166-1 alpha-2 codes to display names.
// Codes outside the table fall back to the raw code.
var countryNames = map[string]string{
	"US": "United States",
	"GB": "United Kingdom",
	"CA": "Canada",
	"AU": "Australia",
	"DE": "Germany",
	"FR": "France",
	"ES": "Spain",
	"IT": "Italy",
	"NL": "Netherlands",
	"SE": "Sweden",
	"NO": "Norway",
	"DK": "Denmark",
	"PL": "Poland",
	"PT": "Portugal",
	"IE": "Ireland",
	"BR": "Brazil",
	"MX": "Mexico",
	"AR": "Argentina",
	"CO": "Colombia",
	"CL": "Chile",
	"IN": "India",
	"ID": "Indonesia",
	"PH": "Philippines",
	"VN": "Vietnam",
	"TH": "Thailand",
	"JP": "Japan",
	"KR": "South Korea",
	"TW": "Taiwan",
	"SG": "Singapore",
	"MY": "Malaysia",
	"TR": "Turkey",
	"SA": "Saudi Arabia",
	"AE": "United Arab Emirates",
	"EG": "Egypt",
	"NG": "Nigeria",
	"ZA": "South Africa",
	"RU": "Russia",
	"UA": "Ukraine",
	"NZ": "New Zealand",
}

// CountryName resolves a country code to a human-readable name.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}

// Geography ranks report rows (dimension: country, metric: views) by view
// count and computes each country's share. The primary-market flag is set to
// the top country's name when its share exceeds the dominance threshold.
func Geography(report *models.ReportResponse) models.GeoBreakdown {
	breakdown := models.GeoBreakdown{}
	if report.Empty() {
		return breakdown
	}

	countryCol := report.ColumnIndex("country")
	viewsCol := report.ColumnIndex("views")
	if countryCol < 0 || viewsCol < 0 {
		return breakdown
	}

	for i := range report.Rows {
		code := report.CellString(i, countryCol)
		views := int64(report.CellFloat(i, viewsCol))

		breakdown.Countries = append(breakdown.Countries, models.CountryViews{
			Code:  code,
			Name:  CountryName(code),
			Views: views,
		})
		breakdown.TotalViews += views
	}

	sort.SliceStable(breakdown.Countries, func(a, b int) bool {
		return breakdown.Countries[a].Views > breakdown.Countries[b].Views
	})

	if breakdown.TotalViews > 0 {
		for i := range breakdown.Countries {
			breakdown.Countries[i].ShareOfAll = float64(breakdown.Countries[i].Views) / float64(breakdown.TotalViews)
		}

		if top := breakdown.Countries[0]; top.ShareOfAll > primaryMarketThreshold {
			name := top.Name
			breakdown.PrimaryMarket = &name
		}
	}

	return breakdown
}
