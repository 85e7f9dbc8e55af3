package models

import (
	"sort"
	"time"
)

// Float returns a pointer to v. Optional metrics are *float64 throughout: nil
// means "no value for this day".
func Float(v float64) *float64 {
	return &v
}

// -----------------------------------------------------------------------------

// DayRow is implemented by every per-day record.
type DayRow interface {
	GetDay() time.Time
}

// MDailyTable is an ordered-by-day table holding at most one row per date.
// A nil *MDailyTable means the source was absent.
type MDailyTable[T DayRow] struct {
	Rows []T `json:"rows"`
}

// NewDailyTable sorts rows by day and keeps the last row seen for a date.
func NewDailyTable[T DayRow](rows []T) *MDailyTable[T] {
	byDay := make(map[time.Time]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		d := r.GetDay()
		if idx, ok := byDay[d]; ok {
			out[idx] = r
			continue
		}
		byDay[d] = len(out)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GetDay().Before(out[j].GetDay())
	})
	return &MDailyTable[T]{Rows: out}
}

// Len is nil-safe.
func (t *MDailyTable[T]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Find returns the row for day, if any.
func (t *MDailyTable[T]) Find(day time.Time) (T, bool) {
	var zero T
	if t == nil {
		return zero, false
	}
	i := sort.Search(len(t.Rows), func(i int) bool {
		return !t.Rows[i].GetDay().Before(day)
	})
	if i < len(t.Rows) && t.Rows[i].GetDay().Equal(day) {
		return t.Rows[i], true
	}
	return zero, false
}

// -----------------------------------------------------------------------------

// MReadinessContributors are the 0-100 sub-scores of the readiness score.
type MReadinessContributors struct {
	ActivityBalance     *float64 `json:"activity_balance"`
	BodyTemperature     *float64 `json:"body_temperature"`
	HRVBalance          *float64 `json:"hrv_balance"`
	PreviousDayActivity *float64 `json:"previous_day_activity"`
	PreviousNight       *float64 `json:"previous_night"`
	RecoveryIndex       *float64 `json:"recovery_index"`
	RestingHeartRate    *float64 `json:"resting_heart_rate"`
	SleepBalance        *float64 `json:"sleep_balance"`
}

// MReadinessDay is one row of the daily readiness export.
type MReadinessDay struct {
	Day                  time.Time              `json:"day"`
	Score                *float64               `json:"score"`
	TemperatureDeviation *float64               `json:"temperature_deviation"`
	TemperatureTrendDev  *float64               `json:"temperature_trend_deviation"`
	Contributors         MReadinessContributors `json:"contributors"`
}

func (r MReadinessDay) GetDay() time.Time { return r.Day }

// MSleepContributors are the 0-100 sub-scores of the sleep score.
type MSleepContributors struct {
	DeepSleep   *float64 `json:"deep_sleep"`
	Efficiency  *float64 `json:"efficiency"`
	Latency     *float64 `json:"latency"`
	REMSleep    *float64 `json:"rem_sleep"`
	Restfulness *float64 `json:"restfulness"`
	Timing      *float64 `json:"timing"`
	TotalSleep  *float64 `json:"total_sleep"`
}

// MSleepDay is one row of the daily sleep export.
type MSleepDay struct {
	Day          time.Time          `json:"day"`
	Score        *float64           `json:"score"`
	Contributors MSleepContributors `json:"contributors"`
}

func (r MSleepDay) GetDay() time.Time { return r.Day }

// MActivitySummary is the allow-listed part of an activity row that is merged
// into the timeline.
type MActivitySummary struct {
	Score              *float64 `json:"score"`
	Steps              *float64 `json:"steps"`
	AverageMetMinutes  *float64 `json:"average_met_minutes"`
	TotalCalories      *float64 `json:"total_calories"`
	HighActivityTime   *float64 `json:"high_activity_time"`
	MediumActivityTime *float64 `json:"medium_activity_time"`
	LowActivityTime    *float64 `json:"low_activity_time"`
	SedentaryTime      *float64 `json:"sedentary_time"`
	RestingTime        *float64 `json:"resting_time"`
	NonWearTime        *float64 `json:"non_wear_time"`
}

// MActivityContributors stay on the processed source only.
type MActivityContributors struct {
	MeetDailyTargets  *float64 `json:"meet_daily_targets"`
	MoveEveryHour     *float64 `json:"move_every_hour"`
	RecoveryTime      *float64 `json:"recovery_time"`
	StayActive        *float64 `json:"stay_active"`
	TrainingFrequency *float64 `json:"training_frequency"`
	TrainingVolume    *float64 `json:"training_volume"`
}

// MActivityDay is one row of the daily activity export.
type MActivityDay struct {
	Day          time.Time             `json:"day"`
	Summary      MActivitySummary      `json:"summary"`
	Contributors MActivityContributors `json:"contributors"`
}

func (r MActivityDay) GetDay() time.Time { return r.Day }

// MSpO2Day is the mean of the valid readings of one day.
type MSpO2Day struct {
	Day            time.Time `json:"day"`
	SpO2Percentage float64   `json:"spo2_percentage"`
	Readings       int       `json:"readings"`
}

func (r MSpO2Day) GetDay() time.Time { return r.Day }

// MHeartRateDay summarises the raw bpm samples of one day.
type MHeartRateDay struct {
	Day           time.Time `json:"day"`
	AvgHR         float64   `json:"avg_hr"`
	MinHR         float64   `json:"min_hr"`
	MaxHR         float64   `json:"max_hr"`
	HRVariability *float64  `json:"hr_variability"`
	Samples       int       `json:"samples"`
}

func (r MHeartRateDay) GetDay() time.Time { return r.Day }

// MBedtimeDay is one row of the bedtime recommendation export.
type MBedtimeDay struct {
	Day                      time.Time `json:"date"`
	BedtimeWindowStartOffset *float64  `json:"bedtime_window_start_offset"`
	BedtimeWindowEndOffset   *float64  `json:"bedtime_window_end_offset"`
}

func (r MBedtimeDay) GetDay() time.Time { return r.Day }

// MSleepPeriod keeps the numeric columns of the detailed sleep export.
type MSleepPeriod struct {
	Day     time.Time           `json:"day"`
	Metrics map[string]*float64 `json:"metrics"`
}

func (r MSleepPeriod) GetDay() time.Time { return r.Day }

// -----------------------------------------------------------------------------

// MProcessedData holds one normalized table per source; nil means absent.
// Columns records, per source, which value columns the export carried so an
// absent column can be told apart from a null cell.
type MProcessedData struct {
	Columns   map[SourceKey][]string      `json:"columns"`
	Readiness *MDailyTable[MReadinessDay] `json:"readiness"`
	Sleep     *MDailyTable[MSleepDay]     `json:"sleep"`
	Activity  *MDailyTable[MActivityDay]  `json:"activity"`
	SpO2      *MDailyTable[MSpO2Day]      `json:"spo2"`
	HeartRate *MDailyTable[MHeartRateDay] `json:"hr"`
	Bedtime   *MDailyTable[MBedtimeDay]   `json:"bedtime"`
	SleepFull *MDailyTable[MSleepPeriod]  `json:"sleep_full"`
}

// HasColumn reports whether source carried column.
func (p *MProcessedData) HasColumn(source SourceKey, column string) bool {
	if p == nil {
		return false
	}
	for _, c := range p.Columns[source] {
		if c == column {
			return true
		}
	}
	return false
}
