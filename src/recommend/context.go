package recommend

import (
	"strconv"

	"biometric-insights/src/analysis/core"
	"biometric-insights/src/models"
)

// Context is everything a rule may look at: the latest row of the recent
// window, aggregates over the window, and the caller supplied profile.
type Context struct {
	Latest  *models.MTimelineRow
	Window  *models.MTimeline
	Profile models.MUserProfile
	Rules   models.MRuleConfig

	// ActivityContributors come from the processed activity source for the
	// latest day; they are not part of the merged timeline.
	ActivityContributors *models.MActivityContributors

	HRVSeries            []float64
	SleepSeries          []float64
	NextDaySleepAfterLow []float64
	HighActivityDays     int
	LowReadinessDays     int
}

// -----------------------------------------------------------------------------

// NewContext precomputes the window aggregates. recent must not be empty.
func NewContext(recent *models.MTimeline, processed *models.MProcessedData, profile models.MUserProfile, rules models.MRuleConfig) *Context {
	ctx := &Context{
		Latest:  recent.Latest(),
		Window:  recent,
		Profile: profile,
		Rules:   rules,
	}

	if processed != nil && processed.Activity != nil {
		if day, ok := processed.Activity.Find(ctx.Latest.Day); ok {
			contributors := day.Contributors
			ctx.ActivityContributors = &contributors
		}
	}

	ctx.HRVSeries = core.NonNull(recent.Values((*models.MTimelineRow).HRVBalance))
	ctx.SleepSeries = core.NonNull(recent.Values((*models.MTimelineRow).SleepScore))
	ctx.NextDaySleepAfterLow = ctx.nextDaySleepAfterLowHRV()
	ctx.HighActivityDays = ctx.countHighActivityDays()
	ctx.LowReadinessDays = ctx.countLowReadinessDays()
	return ctx
}

// -----------------------------------------------------------------------------

// nextDaySleepAfterLowHRV collects the non-null sleep scores recorded on the
// calendar day after each low-HRV day of the window.
func (c *Context) nextDaySleepAfterLowHRV() []float64 {
	sleepByDay := make(map[int64]float64)
	for i := range c.Window.Rows {
		if s := c.Window.Rows[i].SleepScore(); s != nil {
			sleepByDay[c.Window.Rows[i].Day.Unix()] = *s
		}
	}

	var out []float64
	for i := range c.Window.Rows {
		row := &c.Window.Rows[i]
		hrv := row.HRVBalance()
		if hrv == nil || *hrv >= c.Rules.LowContributor {
			continue
		}
		if s, ok := sleepByDay[row.Day.AddDate(0, 0, 1).Unix()]; ok {
			out = append(out, s)
		}
	}
	return out
}

// countHighActivityDays counts days whose steps sit more than
// HighActivitySigma sample deviations above the window mean.
func (c *Context) countHighActivityDays() int {
	steps := core.NonNull(c.Window.Values((*models.MTimelineRow).Steps))
	std, ok := core.CalculateSampleStd(steps)
	if !ok {
		return 0
	}
	mean := core.CalculateMean(steps)

	count := 0
	for _, v := range steps {
		if std > 0 && core.CalculateZScore(v, mean, std) > c.highActivitySigma() {
			count++
		}
	}
	return count
}

func (c *Context) highActivitySigma() float64 {
	if c.Rules.HighActivitySigma == nil {
		return 1
	}
	return *c.Rules.HighActivitySigma
}

func (c *Context) countLowReadinessDays() int {
	count := 0
	for _, v := range core.NonNull(c.Window.Values((*models.MTimelineRow).ReadinessScore)) {
		if v < c.Rules.LowScore {
			count++
		}
	}
	return count
}

// -----------------------------------------------------------------------------

// Below reports whether v is present and strictly under limit.
func Below(v *float64, limit float64) bool {
	return v != nil && *v < limit
}

// AtLeast reports whether v is present and not under limit.
func AtLeast(v *float64, limit float64) bool {
	return v != nil && *v >= limit
}

// Number renders a metric the way it reads in the export: integers without a
// fractional part, everything else as is.
func Number(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// StrictlyDecreasing reports whether the last n values each fall below their
// predecessor.
func StrictlyDecreasing(values []float64, n int) bool {
	if n < 2 || len(values) < n {
		return false
	}
	tail := values[len(values)-n:]
	for i := 1; i < len(tail); i++ {
		if tail[i] >= tail[i-1] {
			return false
		}
	}
	return true
}

// AllBelow reports whether values is non-empty and every entry is under limit.
func AllBelow(values []float64, limit float64) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if v >= limit {
			return false
		}
	}
	return true
}
