package models

import "time"

// Signal names a series that gets a rolling baseline.
type Signal string

const (
	SignalReadiness Signal = "readiness"
	SignalSleep     Signal = "sleep"
	SignalActivity  Signal = "activity"
	SignalHRV       Signal = "hrv"
	SignalRHR       Signal = "rhr"
	SignalSteps     Signal = "steps"
)

// BaselineSignals is the fixed order baselines are computed and exported in.
var BaselineSignals = []Signal{
	SignalReadiness,
	SignalSleep,
	SignalActivity,
	SignalHRV,
	SignalRHR,
	SignalSteps,
}

// MBaselinePoint holds the derived columns of one signal on one day.
type MBaselinePoint struct {
	Avg7d  *float64 `json:"avg_7d"`
	Avg14d *float64 `json:"avg_14d"`
	Trend  *float64 `json:"trend"`
}

// -----------------------------------------------------------------------------

// MTimelineRow is one calendar day of the merged timeline. A nil domain
// pointer means that source had no row for the day.
type MTimelineRow struct {
	Day       time.Time                 `json:"day"`
	Readiness *MReadinessDay            `json:"readiness,omitempty"`
	Sleep     *MSleepDay                `json:"sleep,omitempty"`
	Activity  *MActivitySummary         `json:"activity,omitempty"`
	SpO2      *MSpO2Day                 `json:"spo2,omitempty"`
	HeartRate *MHeartRateDay            `json:"heart_rate,omitempty"`
	Baselines map[Signal]MBaselinePoint `json:"baselines,omitempty"`
}

// ReadinessScore is the `score` column.
func (r *MTimelineRow) ReadinessScore() *float64 {
	if r == nil || r.Readiness == nil {
		return nil
	}
	return r.Readiness.Score
}

// SleepScore is the `score_sleep` column.
func (r *MTimelineRow) SleepScore() *float64 {
	if r == nil || r.Sleep == nil {
		return nil
	}
	return r.Sleep.Score
}

// ActivityScore is the `score_activity` column.
func (r *MTimelineRow) ActivityScore() *float64 {
	if r == nil || r.Activity == nil {
		return nil
	}
	return r.Activity.Score
}

func (r *MTimelineRow) Steps() *float64 {
	if r == nil || r.Activity == nil {
		return nil
	}
	return r.Activity.Steps
}

func (r *MTimelineRow) TotalCalories() *float64 {
	if r == nil || r.Activity == nil {
		return nil
	}
	return r.Activity.TotalCalories
}

// HRVBalance is the readiness HRV balance contributor.
func (r *MTimelineRow) HRVBalance() *float64 {
	if r == nil || r.Readiness == nil {
		return nil
	}
	return r.Readiness.Contributors.HRVBalance
}

// RestingHeartRate is the readiness resting heart rate contributor.
func (r *MTimelineRow) RestingHeartRate() *float64 {
	if r == nil || r.Readiness == nil {
		return nil
	}
	return r.Readiness.Contributors.RestingHeartRate
}

func (r *MTimelineRow) SpO2Percentage() *float64 {
	if r == nil || r.SpO2 == nil {
		return nil
	}
	v := r.SpO2.SpO2Percentage
	return &v
}

// SignalValue returns the raw value a baseline is computed from.
func (r *MTimelineRow) SignalValue(s Signal) *float64 {
	switch s {
	case SignalReadiness:
		return r.ReadinessScore()
	case SignalSleep:
		return r.SleepScore()
	case SignalActivity:
		return r.ActivityScore()
	case SignalHRV:
		return r.HRVBalance()
	case SignalRHR:
		return r.RestingHeartRate()
	case SignalSteps:
		return r.Steps()
	}
	return nil
}

// Trend returns the percent deviation of a signal from its 7 day baseline.
func (r *MTimelineRow) Trend(s Signal) *float64 {
	if r == nil || r.Baselines == nil {
		return nil
	}
	b, ok := r.Baselines[s]
	if !ok {
		return nil
	}
	return b.Trend
}

// -----------------------------------------------------------------------------

// MTimeline is the merged, date-sorted table. Columns lists the column names
// the join produced, after suffixing; Fields maps each of them (except day)
// back to its domain.
type MTimeline struct {
	Base    SourceKey      `json:"base"`
	Columns []string       `json:"columns"`
	Fields  []MColumn      `json:"fields"`
	Rows    []MTimelineRow `json:"rows"`
}

// HasColumn reports whether the merge produced the named column.
func (t *MTimeline) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Empty is nil-safe.
func (t *MTimeline) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Latest returns the last row, or nil for an empty timeline.
func (t *MTimeline) Latest() *MTimelineRow {
	if t.Empty() {
		return nil
	}
	return &t.Rows[len(t.Rows)-1]
}

// Values collects one optional series across all rows.
func (t *MTimeline) Values(get func(*MTimelineRow) *float64) []*float64 {
	if t == nil {
		return nil
	}
	out := make([]*float64, len(t.Rows))
	for i := range t.Rows {
		out[i] = get(&t.Rows[i])
	}
	return out
}
