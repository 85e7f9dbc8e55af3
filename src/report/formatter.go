package report

import (
	"fmt"
	"strings"

	"biometric-insights/src/analysis/core"
	"biometric-insights/src/models"
	"biometric-insights/src/recommend"
	"biometric-insights/src/utils"
)

// NoDataMessage is returned instead of a report when there is no recent data.
const NoDataMessage = "No data available to generate health report."

const lineWidth = 80

var (
	heavyRule = strings.Repeat("=", lineWidth)
	lightRule = strings.Repeat("-", lineWidth)
)

// categoryTitles are the recommendation section headings.
var categoryTitles = map[models.Category]string{
	models.CategorySleep:    "SLEEP OPTIMIZATION",
	models.CategoryActivity: "ACTIVITY GUIDANCE",
	models.CategoryRecovery: "RECOVERY STRATEGIES",
	models.CategoryGeneral:  "GENERAL HEALTH",
}

// trendLabels are the signals shown in the weekly trends section, in order.
var trendLabels = []struct {
	Signal models.Signal
	Label  string
}{
	{models.SignalReadiness, "Readiness"},
	{models.SignalSleep, "Sleep"},
	{models.SignalActivity, "Activity"},
	{models.SignalHRV, "HRV Balance"},
}

// -----------------------------------------------------------------------------

// StatusSnapshot collects the current status metrics of the latest row.
// Missing metrics are left out.
func StatusSnapshot(latest *models.MTimelineRow) []models.MStatusMetric {
	if latest == nil {
		return nil
	}
	candidates := []struct {
		key, label, unit string
		value            *float64
	}{
		{"readiness", "Readiness Score", "/100", latest.ReadinessScore()},
		{"sleep", "Sleep Score", "/100", latest.SleepScore()},
		{"activity", "Activity Score", "/100", latest.ActivityScore()},
		{"steps", "Steps", "", latest.Steps()},
		{"total_calories", "Total Calories", "", latest.TotalCalories()},
		{"spo2", "Blood Oxygen", "%", latest.SpO2Percentage()},
	}

	var out []models.MStatusMetric
	for _, c := range candidates {
		if c.value == nil {
			continue
		}
		out = append(out, models.MStatusMetric{Key: c.key, Label: c.label, Value: *c.value, Unit: c.unit})
	}
	return out
}

// TrendLines collects the non-null trends of the latest row.
func TrendLines(latest *models.MTimelineRow) []models.MTrendLine {
	if latest == nil {
		return nil
	}
	var out []models.MTrendLine
	for _, t := range trendLabels {
		if v := latest.Trend(t.Signal); v != nil {
			out = append(out, models.MTrendLine{Signal: t.Signal, Label: t.Label, Percent: *v})
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func formatStatus(m models.MStatusMetric) string {
	switch m.Key {
	case "steps", "total_calories":
		return fmt.Sprintf("%s: %d", m.Label, int(m.Value))
	default:
		return fmt.Sprintf("%s: %s%s", m.Label, recommend.Number(&m.Value), m.Unit)
	}
}

func formatTrend(t models.MTrendLine) string {
	arrow := "↓"
	if t.Percent > 0 {
		arrow = "↑"
	}
	return fmt.Sprintf("%s: %s %d%% compared to your baseline", t.Label, arrow, core.RoundAbsPercent(t.Percent))
}

func section(lines []string, title string) []string {
	return append(lines, lightRule, title, lightRule)
}

// -----------------------------------------------------------------------------

// Format renders the plain text report. timeline is accepted alongside the
// recent window for callers that hold both; only the recent window is read.
func Format(timeline, recent *models.MTimeline, set *models.MRecommendationSet) string {
	if recent.Empty() {
		return NoDataMessage
	}
	if set == nil {
		set = models.NewRecommendationSet()
	}
	latest := recent.Latest()

	lines := []string{
		heavyRule,
		"PERSONALIZED HEALTH INSIGHTS & RECOMMENDATIONS",
		heavyRule,
		fmt.Sprintf("Report Date: %s", latest.Day.Format(utils.DayLayout)),
		"",
	}

	lines = section(lines, "CURRENT STATUS")
	for _, m := range StatusSnapshot(latest) {
		lines = append(lines, formatStatus(m))
	}
	lines = append(lines, "")

	if len(set.Insights) > 0 {
		lines = section(lines, "INSIGHTS")
		for _, insight := range set.Insights {
			lines = append(lines, "• "+insight)
		}
		lines = append(lines, "")
	}

	if len(set.Alerts) > 0 {
		lines = section(lines, "ALERTS")
		lines = append(lines, set.Alerts...)
		lines = append(lines, "")
	}

	if set.HasRecommendations() {
		lines = section(lines, "RECOMMENDATIONS")
		for _, category := range models.Categories {
			recs := set.Recommendations[category]
			if len(recs) == 0 {
				continue
			}
			lines = append(lines, "\n"+categoryTitles[category]+":")
			for i, r := range recs {
				lines = append(lines, fmt.Sprintf("%d. %s", i+1, r))
			}
		}
		lines = append(lines, "")
	}

	lines = section(lines, "WEEKLY TRENDS")
	for _, t := range TrendLines(latest) {
		lines = append(lines, formatTrend(t))
	}

	lines = append(lines,
		"",
		heavyRule,
		"This report is based on your personal health data and is intended for informational purposes only.",
		"Always consult with healthcare professionals before making significant changes to your health routine.",
		heavyRule,
	)

	return strings.Join(lines, "\n")
}
