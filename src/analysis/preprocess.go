package analysis

import (
	"time"

	"biometric-insights/src/analysis/core"
	"biometric-insights/src/models"
)

// Export column vocabulary.
const (
	colDay       = "day"
	colDate      = "date"
	colTimestamp = "timestamp"
	colScore     = "score"
	colBPM       = "bpm"
	colSpO2      = "spo2_percentage"

	ColHRVBalance       = "contributors_hrv_balance"
	ColRestingHeartRate = "contributors_resting_heart_rate"
	ColSteps            = "steps"
	ColTotalCalories    = "total_calories"
)

var readinessColumns = []string{
	colScore,
	"temperature_deviation",
	"temperature_trend_deviation",
	"contributors_activity_balance",
	"contributors_body_temperature",
	ColHRVBalance,
	"contributors_previous_day_activity",
	"contributors_previous_night",
	"contributors_recovery_index",
	ColRestingHeartRate,
	"contributors_sleep_balance",
}

var sleepColumns = []string{
	colScore,
	"contributors_deep_sleep",
	"contributors_efficiency",
	"contributors_latency",
	"contributors_rem_sleep",
	"contributors_restfulness",
	"contributors_timing",
	"contributors_total_sleep",
}

// ActivityAllowList is the subset of activity columns merged into the
// timeline, in merge order.
var ActivityAllowList = []string{
	colScore,
	ColSteps,
	"average_met_minutes",
	ColTotalCalories,
	"high_activity_time",
	"medium_activity_time",
	"low_activity_time",
	"sedentary_time",
	"resting_time",
	"non_wear_time",
}

var activityContributorColumns = []string{
	"contributors_meet_daily_targets",
	"contributors_move_every_hour",
	"contributors_recovery_time",
	"contributors_stay_active",
	"contributors_training_frequency",
	"contributors_training_volume",
}

// HeartRateColumns are the per-day reductions of the bpm samples.
var HeartRateColumns = []string{"avg_hr", "min_hr", "max_hr", "hr_variability"}

// -----------------------------------------------------------------------------

// Preprocess normalizes every raw source into a typed daily table. Absent
// sources stay nil; rows with an unparseable day are dropped one by one.
func (a *AnalysisFacade) Preprocess(raw models.MSourceTables) *models.MProcessedData {
	processed := &models.MProcessedData{Columns: make(map[models.SourceKey][]string)}

	if t := raw[models.SourceReadiness]; t != nil {
		processed.Readiness = a.preprocessReadiness(t)
		processed.Columns[models.SourceReadiness] = presentColumns(t, readinessColumns)
	}
	if t := raw[models.SourceSleep]; t != nil {
		processed.Sleep = a.preprocessSleep(t)
		processed.Columns[models.SourceSleep] = presentColumns(t, sleepColumns)
	}
	if t := raw[models.SourceActivity]; t != nil {
		processed.Activity = a.preprocessActivity(t)
		processed.Columns[models.SourceActivity] = presentColumns(t, append(append([]string{}, ActivityAllowList...), activityContributorColumns...))
	}
	if t := raw[models.SourceSpO2]; t != nil {
		processed.SpO2 = a.preprocessSpO2(t)
		if processed.SpO2 != nil {
			processed.Columns[models.SourceSpO2] = []string{colSpO2}
		}
	}
	if t := raw[models.SourceHeartRate]; t != nil {
		processed.HeartRate = a.preprocessHeartRate(t)
		if processed.HeartRate != nil {
			processed.Columns[models.SourceHeartRate] = HeartRateColumns
		}
	}
	if t := raw[models.SourceBedtime]; t != nil {
		processed.Bedtime = a.preprocessBedtime(t)
	}
	if t := raw[models.SourceSleepFull]; t != nil {
		processed.SleepFull = a.preprocessSleepFull(t)
	}

	for _, key := range models.AllSources {
		if raw[key] == nil {
			a.Logger.Warning("No %s data available, skipping", key)
		}
	}

	return processed
}

// -----------------------------------------------------------------------------

func presentColumns(t *models.MRawTable, candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if t.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// cell is the optional numeric value of one cell; absent columns read as nil.
func cell(t *models.MRawTable, row int, column string) *float64 {
	v, ok := t.Value(row, column)
	if !ok {
		return nil
	}
	return ParseOptionalFloat(v)
}

// rowDay parses the day column of a row, logging and reporting drops.
func (a *AnalysisFacade) rowDay(t *models.MRawTable, row int, column string) (time.Time, bool) {
	v, _ := t.Value(row, column)
	day, ok := ParseDay(v)
	if !ok {
		a.Logger.Debug("Dropping %s row %d: unparseable %s %q", t.Source, row, column, v)
	}
	return day, ok
}

// -----------------------------------------------------------------------------

func (a *AnalysisFacade) preprocessReadiness(t *models.MRawTable) *models.MDailyTable[models.MReadinessDay] {
	rows := make([]models.MReadinessDay, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		day, ok := a.rowDay(t, i, colDay)
		if !ok {
			continue
		}
		rows = append(rows, models.MReadinessDay{
			Day:                  day,
			Score:                cell(t, i, colScore),
			TemperatureDeviation: cell(t, i, "temperature_deviation"),
			TemperatureTrendDev:  cell(t, i, "temperature_trend_deviation"),
			Contributors: models.MReadinessContributors{
				ActivityBalance:     cell(t, i, "contributors_activity_balance"),
				BodyTemperature:     cell(t, i, "contributors_body_temperature"),
				HRVBalance:          cell(t, i, ColHRVBalance),
				PreviousDayActivity: cell(t, i, "contributors_previous_day_activity"),
				PreviousNight:       cell(t, i, "contributors_previous_night"),
				RecoveryIndex:       cell(t, i, "contributors_recovery_index"),
				RestingHeartRate:    cell(t, i, ColRestingHeartRate),
				SleepBalance:        cell(t, i, "contributors_sleep_balance"),
			},
		})
	}
	return models.NewDailyTable(rows)
}

// -----------------------------------------------------------------------------

func (a *AnalysisFacade) preprocessSleep(t *models.MRawTable) *models.MDailyTable[models.MSleepDay] {
	rows := make([]models.MSleepDay, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		day, ok := a.rowDay(t, i, colDay)
		if !ok {
			continue
		}
		rows = append(rows, models.MSleepDay{
			Day:   day,
			Score: cell(t, i, colScore),
			Contributors: models.MSleepContributors{
				DeepSleep:   cell(t, i, "contributors_deep_sleep"),
				Efficiency:  cell(t, i, "contributors_efficiency"),
				Latency:     cell(t, i, "contributors_latency"),
				REMSleep:    cell(t, i, "contributors_rem_sleep"),
				Restfulness: cell(t, i, "contributors_restfulness"),
				Timing:      cell(t, i, "contributors_timing"),
				TotalSleep:  cell(t, i, "contributors_total_sleep"),
			},
		})
	}
	return models.NewDailyTable(rows)
}

// -----------------------------------------------------------------------------

func (a *AnalysisFacade) preprocessActivity(t *models.MRawTable) *models.MDailyTable[models.MActivityDay] {
	rows := make([]models.MActivityDay, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		day, ok := a.rowDay(t, i, colDay)
		if !ok {
			continue
		}
		rows = append(rows, models.MActivityDay{
			Day: day,
			Summary: models.MActivitySummary{
				Score:              cell(t, i, colScore),
				Steps:              cell(t, i, ColSteps),
				AverageMetMinutes:  cell(t, i, "average_met_minutes"),
				TotalCalories:      cell(t, i, ColTotalCalories),
				HighActivityTime:   cell(t, i, "high_activity_time"),
				MediumActivityTime: cell(t, i, "medium_activity_time"),
				LowActivityTime:    cell(t, i, "low_activity_time"),
				SedentaryTime:      cell(t, i, "sedentary_time"),
				RestingTime:        cell(t, i, "resting_time"),
				NonWearTime:        cell(t, i, "non_wear_time"),
			},
			Contributors: models.MActivityContributors{
				MeetDailyTargets:  cell(t, i, "contributors_meet_daily_targets"),
				MoveEveryHour:     cell(t, i, "contributors_move_every_hour"),
				RecoveryTime:      cell(t, i, "contributors_recovery_time"),
				StayActive:        cell(t, i, "contributors_stay_active"),
				TrainingFrequency: cell(t, i, "contributors_training_frequency"),
				TrainingVolume:    cell(t, i, "contributors_training_volume"),
			},
		})
	}
	return models.NewDailyTable(rows)
}

// -----------------------------------------------------------------------------

// preprocessSpO2 averages the valid readings of each day. Null readings are
// excluded, days without a valid reading produce no row, and a table without
// any valid reading is treated as absent.
func (a *AnalysisFacade) preprocessSpO2(t *models.MRawTable) *models.MDailyTable[models.MSpO2Day] {
	var days []time.Time
	var readings []float64
	for i := 0; i < t.Len(); i++ {
		v := cell(t, i, colSpO2)
		if v == nil {
			continue
		}
		day, ok := a.rowDay(t, i, colDay)
		if !ok {
			continue
		}
		days = append(days, day)
		readings = append(readings, *v)
	}
	if len(readings) == 0 {
		a.Logger.Warning("SpO2 export %s has no valid readings", t.Path)
		return nil
	}

	groups := GroupByDay(days, readings)
	rows := make([]models.MSpO2Day, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, models.MSpO2Day{
			Day:            g.Day,
			SpO2Percentage: core.CalculateMean(g.Items),
			Readings:       len(g.Items),
		})
	}
	return models.NewDailyTable(rows)
}

// -----------------------------------------------------------------------------

// preprocessHeartRate reduces raw bpm samples to daily mean/min/max/std.
func (a *AnalysisFacade) preprocessHeartRate(t *models.MRawTable) *models.MDailyTable[models.MHeartRateDay] {
	var days []time.Time
	var samples []float64
	for i := 0; i < t.Len(); i++ {
		v := cell(t, i, colBPM)
		if v == nil {
			continue
		}
		day, ok := a.rowDay(t, i, colTimestamp)
		if !ok {
			continue
		}
		days = append(days, day)
		samples = append(samples, *v)
	}
	if len(samples) == 0 {
		a.Logger.Warning("Heart rate export %s has no valid samples", t.Path)
		return nil
	}

	groups := GroupByDay(days, samples)
	rows := make([]models.MHeartRateDay, 0, len(groups))
	for _, g := range groups {
		stats, ok := core.ComputeDailyStats(g.Items)
		if !ok {
			continue
		}
		rows = append(rows, models.MHeartRateDay{
			Day:           g.Day,
			AvgHR:         stats.Mean,
			MinHR:         stats.Min,
			MaxHR:         stats.Max,
			HRVariability: stats.Std,
			Samples:       stats.Count,
		})
	}
	return models.NewDailyTable(rows)
}

// -----------------------------------------------------------------------------

func (a *AnalysisFacade) preprocessBedtime(t *models.MRawTable) *models.MDailyTable[models.MBedtimeDay] {
	dayColumn := colDate
	if !t.HasColumn(colDate) && t.HasColumn(colDay) {
		dayColumn = colDay
	}
	startColumn, endColumn := "bedtime_window_start_offset", "bedtime_window_end_offset"
	if !t.HasColumn(startColumn) {
		startColumn, endColumn = "bedtime_window_start", "bedtime_window_end"
	}

	rows := make([]models.MBedtimeDay, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		day, ok := a.rowDay(t, i, dayColumn)
		if !ok {
			continue
		}
		rows = append(rows, models.MBedtimeDay{
			Day:                      day,
			BedtimeWindowStartOffset: cell(t, i, startColumn),
			BedtimeWindowEndOffset:   cell(t, i, endColumn),
		})
	}
	return models.NewDailyTable(rows)
}

// -----------------------------------------------------------------------------

// preprocessSleepFull keeps every numeric column of the detailed export.
// Without a day column the table cannot be keyed and is treated as absent.
func (a *AnalysisFacade) preprocessSleepFull(t *models.MRawTable) *models.MDailyTable[models.MSleepPeriod] {
	if !t.HasColumn(colDay) {
		a.Logger.Warning("Detailed sleep export %s has no day column", t.Path)
		return nil
	}

	rows := make([]models.MSleepPeriod, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		day, ok := a.rowDay(t, i, colDay)
		if !ok {
			continue
		}
		metrics := make(map[string]*float64)
		for _, c := range t.Columns {
			if c == colDay {
				continue
			}
			if v := cell(t, i, c); v != nil {
				metrics[c] = v
			}
		}
		rows = append(rows, models.MSleepPeriod{Day: day, Metrics: metrics})
	}
	return models.NewDailyTable(rows)
}
