package models

import "strings"

// SourceBaseline marks derived rolling columns in MColumn.Source.
const SourceBaseline SourceKey = "baseline"

// MColumn ties a merged column name to the typed field it reads.
type MColumn struct {
	Name   string    `json:"name"`
	Source SourceKey `json:"source"`
	Field  string    `json:"field"`
}

// -----------------------------------------------------------------------------

// Field reads one export column of one domain from the row. Unknown columns
// and missing domains read as nil.
func (r *MTimelineRow) Field(source SourceKey, field string) *float64 {
	if r == nil {
		return nil
	}
	switch source {
	case SourceReadiness:
		if r.Readiness != nil {
			return r.Readiness.field(field)
		}
	case SourceSleep:
		if r.Sleep != nil {
			return r.Sleep.field(field)
		}
	case SourceActivity:
		if r.Activity != nil {
			return r.Activity.field(field)
		}
	case SourceSpO2:
		if field == "spo2_percentage" {
			return r.SpO2Percentage()
		}
	case SourceHeartRate:
		if r.HeartRate != nil {
			return r.HeartRate.field(field)
		}
	case SourceBaseline:
		return r.baselineField(field)
	}
	return nil
}

func (r *MTimelineRow) baselineField(field string) *float64 {
	for _, s := range BaselineSignals {
		prefix := string(s) + "_"
		if !strings.HasPrefix(field, prefix) {
			continue
		}
		point := r.Baselines[s]
		switch strings.TrimPrefix(field, prefix) {
		case "7d_avg":
			return point.Avg7d
		case "14d_avg":
			return point.Avg14d
		case "trend":
			return point.Trend
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *MReadinessDay) field(name string) *float64 {
	c := d.Contributors
	switch name {
	case "score":
		return d.Score
	case "temperature_deviation":
		return d.TemperatureDeviation
	case "temperature_trend_deviation":
		return d.TemperatureTrendDev
	case "contributors_activity_balance":
		return c.ActivityBalance
	case "contributors_body_temperature":
		return c.BodyTemperature
	case "contributors_hrv_balance":
		return c.HRVBalance
	case "contributors_previous_day_activity":
		return c.PreviousDayActivity
	case "contributors_previous_night":
		return c.PreviousNight
	case "contributors_recovery_index":
		return c.RecoveryIndex
	case "contributors_resting_heart_rate":
		return c.RestingHeartRate
	case "contributors_sleep_balance":
		return c.SleepBalance
	}
	return nil
}

func (d *MSleepDay) field(name string) *float64 {
	c := d.Contributors
	switch name {
	case "score":
		return d.Score
	case "contributors_deep_sleep":
		return c.DeepSleep
	case "contributors_efficiency":
		return c.Efficiency
	case "contributors_latency":
		return c.Latency
	case "contributors_rem_sleep":
		return c.REMSleep
	case "contributors_restfulness":
		return c.Restfulness
	case "contributors_timing":
		return c.Timing
	case "contributors_total_sleep":
		return c.TotalSleep
	}
	return nil
}

func (a *MActivitySummary) field(name string) *float64 {
	switch name {
	case "score":
		return a.Score
	case "steps":
		return a.Steps
	case "average_met_minutes":
		return a.AverageMetMinutes
	case "total_calories":
		return a.TotalCalories
	case "high_activity_time":
		return a.HighActivityTime
	case "medium_activity_time":
		return a.MediumActivityTime
	case "low_activity_time":
		return a.LowActivityTime
	case "sedentary_time":
		return a.SedentaryTime
	case "resting_time":
		return a.RestingTime
	case "non_wear_time":
		return a.NonWearTime
	}
	return nil
}

func (h *MHeartRateDay) field(name string) *float64 {
	switch name {
	case "avg_hr":
		return Float(h.AvgHR)
	case "min_hr":
		return Float(h.MinHR)
	case "max_hr":
		return Float(h.MaxHR)
	case "hr_variability":
		return h.HRVariability
	}
	return nil
}
