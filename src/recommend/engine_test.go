package recommend

import (
	"strings"
	"testing"
	"time"

	"biometric-insights/src/logger"
	"biometric-insights/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var f = models.Float

type dayValues struct {
	readiness *float64
	sleep     *float64
	activity  *float64
	hrv       *float64
	steps     *float64
	spo2      *float64
}

func buildWindow(values ...dayValues) *models.MTimeline {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tl := &models.MTimeline{Base: models.SourceReadiness}
	for i, v := range values {
		row := models.MTimelineRow{
			Day:       start.AddDate(0, 0, i),
			Baselines: map[models.Signal]models.MBaselinePoint{},
		}
		if v.readiness != nil || v.hrv != nil {
			row.Readiness = &models.MReadinessDay{
				Day:          row.Day,
				Score:        v.readiness,
				Contributors: models.MReadinessContributors{HRVBalance: v.hrv},
			}
		}
		if v.sleep != nil {
			row.Sleep = &models.MSleepDay{Day: row.Day, Score: v.sleep}
		}
		if v.activity != nil || v.steps != nil {
			row.Activity = &models.MActivitySummary{Score: v.activity, Steps: v.steps}
		}
		if v.spo2 != nil {
			row.SpO2 = &models.MSpO2Day{Day: row.Day, SpO2Percentage: *v.spo2, Readings: 1}
		}
		tl.Rows = append(tl.Rows, row)
	}
	return tl
}

func newTestEngine(profile models.MUserProfile) *Engine {
	return NewEngine(models.MRuleConfig{}, profile, logger.NewNopLogger())
}

func containsText(list []string, fragment string) bool {
	for _, s := range list {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

func TestGenerate_EndToEndScenario(t *testing.T) {
	window := buildWindow(
		dayValues{sleep: f(55)},
		dayValues{sleep: f(58)},
		dayValues{sleep: f(52)},
		dayValues{readiness: f(55), sleep: f(58), activity: f(90), spo2: f(93), hrv: f(65)},
	)
	latest := window.Latest()
	latest.Baselines[models.SignalReadiness] = models.MBaselinePoint{Avg7d: f(68.75), Trend: f(-20)}

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)

	assert.Contains(t, set.Alerts, "⚠️ Your readiness has declined by 20% compared to your baseline.")
	assert.Contains(t, set.Insights, "Your activity level is significantly higher than your sleep quality. This imbalance might affect your recovery and performance.")
	assert.Contains(t, set.Alerts, "⚠️ Your blood oxygen level of 93% is below the optimal range.")
	assert.True(t, containsText(set.Alerts, "consistently poor sleep for the past 3 days"))
	assert.True(t, containsText(set.Recommendations[models.CategoryRecovery], "Your HRV balance is low"))

	// Alerts follow rule order.
	require.Len(t, set.Alerts, 3)
	assert.True(t, strings.Contains(set.Alerts[0], "readiness"))
	assert.True(t, strings.Contains(set.Alerts[1], "poor sleep"))
	assert.True(t, strings.Contains(set.Alerts[2], "blood oxygen"))

	// Sleep recommendations: low score pair, then the poor sleep pattern.
	sleepRecs := set.Recommendations[models.CategorySleep]
	require.Len(t, sleepRecs, 3)
	assert.True(t, strings.HasPrefix(sleepRecs[0], "Establish a consistent sleep schedule"))
	assert.True(t, strings.HasPrefix(sleepRecs[2], "You're experiencing a pattern of poor sleep"))

	// Insights start with the sleep band, then readiness, then activity.
	assert.Equal(t, "Your sleep score of 58 is moderate. There's room for improvement in your sleep quality.", set.Insights[0])
	assert.Equal(t, "Your readiness score of 55 is moderate. Consider moderate-intensity activities today.", set.Insights[1])
	assert.Equal(t, "Your activity score of 90 is excellent. You're maintaining a high level of physical activity.", set.Insights[2])
}

func TestGenerate_Deterministic(t *testing.T) {
	window := buildWindow(
		dayValues{readiness: f(70), sleep: f(65), activity: f(40), hrv: f(80), steps: f(3000)},
		dayValues{readiness: f(58), sleep: f(62), activity: f(45), hrv: f(60), steps: f(4000)},
	)
	engine := newTestEngine(models.MUserProfile{Gender: models.GenderFemale})

	first := engine.Generate(window, window, nil)
	second := engine.Generate(window, window, nil)

	assert.Equal(t, first, second)
}

func TestGenerate_EmptyWindow(t *testing.T) {
	engine := newTestEngine(models.MUserProfile{})

	for _, recent := range []*models.MTimeline{nil, {}} {
		set := engine.Generate(nil, recent, nil)
		assert.Empty(t, set.Alerts)
		assert.Empty(t, set.Insights)
		assert.False(t, set.HasRecommendations())
		assert.Len(t, set.Recommendations, 4)
	}
}

func TestGenerate_SkipsAbsentContributors(t *testing.T) {
	window := buildWindow(dayValues{sleep: f(40)})

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)

	assert.Equal(t, []string{
		"Establish a consistent sleep schedule by going to bed and waking up at the same time every day, even on weekends.",
		"Create a relaxing bedtime routine that signals to your body it's time to wind down (reading, gentle stretching, or meditation).",
	}, set.Recommendations[models.CategorySleep])
	assert.Equal(t, []string{"Your sleep score of 40 is low. Prioritizing sleep improvements could significantly benefit your overall health."}, set.Insights)
	assert.Empty(t, set.Alerts)
}

func TestGenerate_SleepContributorTips(t *testing.T) {
	window := buildWindow(dayValues{sleep: f(50)})
	window.Rows[0].Sleep.Contributors = models.MSleepContributors{
		DeepSleep: f(60),
		REMSleep:  f(90),
		Timing:    f(30),
	}

	set := newTestEngine(models.MUserProfile{Gender: models.GenderMale}).Generate(window, window, nil)

	recs := set.Recommendations[models.CategorySleep]
	require.Len(t, recs, 6)
	assert.True(t, strings.HasPrefix(recs[2], "To improve deep sleep"))
	assert.True(t, strings.HasPrefix(recs[4], "Your sleep timing is irregular"))
	assert.True(t, strings.HasPrefix(recs[5], "Men typically need slightly more deep sleep"))
}

func TestGenerate_SleepTrendAlert(t *testing.T) {
	window := buildWindow(dayValues{sleep: f(72)})
	window.Rows[0].Baselines[models.SignalSleep] = models.MBaselinePoint{Trend: f(-12.5)}

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)

	assert.Equal(t, []string{"⚠️ Your sleep quality has declined by 12% compared to your baseline."}, set.Alerts)
	assert.Contains(t, set.Recommendations[models.CategorySleep], "Your sleep quality has been declining. Consider tracking potential disruptors like stress, late meals, or screen time.")
}

func TestGenerate_ActivityBranches(t *testing.T) {
	low := buildWindow(dayValues{activity: f(40), steps: f(3210.7)})
	processed := &models.MProcessedData{
		Activity: models.NewDailyTable([]models.MActivityDay{{
			Day: low.Rows[0].Day,
			Contributors: models.MActivityContributors{
				MeetDailyTargets:  f(50),
				MoveEveryHour:     f(95),
				TrainingFrequency: f(20),
			},
		}}),
	}

	set := newTestEngine(models.MUserProfile{}).Generate(low, low, processed)
	recs := set.Recommendations[models.CategoryActivity]
	require.Len(t, recs, 5)
	assert.Equal(t, "Your step count of 3210 is below recommended levels. Aim to add 1,000 more steps each day this week.", recs[2])
	assert.True(t, strings.HasPrefix(recs[3], "You're not consistently meeting"))
	assert.True(t, strings.HasPrefix(recs[4], "Your training frequency is low"))

	high := buildWindow(dayValues{activity: f(95), readiness: f(65)})
	set = newTestEngine(models.MUserProfile{}).Generate(high, high, nil)
	recs = set.Recommendations[models.CategoryActivity]
	require.Len(t, recs, 2)
	assert.True(t, strings.HasPrefix(recs[0], "Your activity level is high but your readiness is moderate"))
}

func TestGenerate_SleepHigherImbalance(t *testing.T) {
	window := buildWindow(dayValues{sleep: f(90), activity: f(55)})

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)

	assert.Contains(t, set.Insights, "Your sleep quality is significantly better than your activity level. This suggests you have a good foundation for increasing your physical activity.")
	assert.Contains(t, set.Recommendations[models.CategoryGeneral], "You have good sleep quality but lower activity. This is an opportunity to gradually increase your physical activity while maintaining your good sleep habits.")
}

func TestGenerate_ImbalanceExactlyAtGapDoesNotFire(t *testing.T) {
	window := buildWindow(dayValues{sleep: f(90), activity: f(60)})

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)

	assert.False(t, containsText(set.Insights, "significantly"))
}

func TestGenerate_HRVNextDaySleep(t *testing.T) {
	window := buildWindow(
		dayValues{hrv: f(60), sleep: f(80)},
		dayValues{hrv: f(65), sleep: f(65)},
		dayValues{hrv: f(80), sleep: f(60)},
		dayValues{hrv: f(80), sleep: f(85)},
	)

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)

	assert.Contains(t, set.Insights, "There appears to be a correlation between your low HRV days and poor sleep quality the following night.")
}

func TestGenerate_HRVNextDaySleepNeedsTwoFollowUps(t *testing.T) {
	window := buildWindow(
		dayValues{hrv: f(80), sleep: f(80)},
		dayValues{hrv: f(80), sleep: f(65)},
		dayValues{hrv: f(60), sleep: f(60)},
		dayValues{hrv: f(80), sleep: f(50)},
	)

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)

	assert.False(t, containsText(set.Insights, "correlation"))
}

func TestGenerate_Overtraining(t *testing.T) {
	window := buildWindow(
		dayValues{steps: f(20000), readiness: f(55)},
		dayValues{steps: f(20000), readiness: f(50)},
		dayValues{steps: f(20000), readiness: f(75)},
		dayValues{steps: f(5000), readiness: f(75)},
		dayValues{steps: f(5000), readiness: f(75)},
		dayValues{steps: f(5000), readiness: f(75)},
		dayValues{steps: f(5000), readiness: f(75)},
	)

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)

	assert.Contains(t, set.Alerts, "⚠️ Potential overtraining detected. You've had several high activity days combined with low readiness scores.")

	// A stricter sigma removes every high activity day.
	strict := NewEngine(models.MRuleConfig{HighActivitySigma: f(2)}, models.MUserProfile{}, logger.NewNopLogger())
	set = strict.Generate(window, window, nil)
	assert.False(t, containsText(set.Alerts, "overtraining"))
}

func TestGenerate_OvertrainingZeroSigma(t *testing.T) {
	window := buildWindow(
		dayValues{steps: f(6000), readiness: f(50)},
		dayValues{steps: f(6000), readiness: f(50)},
		dayValues{steps: f(6000), readiness: f(75)},
		dayValues{steps: f(2000), readiness: f(75)},
		dayValues{steps: f(2000), readiness: f(75)},
		dayValues{steps: f(2000), readiness: f(75)},
	)

	// No day is a full deviation above the mean.
	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)
	assert.False(t, containsText(set.Alerts, "overtraining"))

	meanOnly := NewEngine(models.MRuleConfig{HighActivitySigma: f(0)}, models.MUserProfile{}, logger.NewNopLogger())
	set = meanOnly.Generate(window, window, nil)
	assert.True(t, containsText(set.Alerts, "overtraining"))
}

func TestGenerate_HRVDecline(t *testing.T) {
	declining := buildWindow(
		dayValues{hrv: f(95)},
		dayValues{hrv: f(90)},
		dayValues{hrv: f(85)},
		dayValues{hrv: f(80)},
		dayValues{hrv: f(75)},
	)
	set := newTestEngine(models.MUserProfile{}).Generate(declining, declining, nil)
	assert.True(t, containsText(set.Alerts, "HRV has been consistently declining"))

	flat := buildWindow(
		dayValues{hrv: f(95)},
		dayValues{hrv: f(90)},
		dayValues{hrv: f(90)},
		dayValues{hrv: f(80)},
		dayValues{hrv: f(75)},
	)
	set = newTestEngine(models.MUserProfile{}).Generate(flat, flat, nil)
	assert.False(t, containsText(set.Alerts, "HRV has been consistently declining"))

	short := NewEngine(models.MRuleConfig{HRVDeclineRun: 3}, models.MUserProfile{}, logger.NewNopLogger())
	set = short.Generate(flat, flat, nil)
	assert.True(t, containsText(set.Alerts, "HRV has been consistently declining"))
}

func TestGenerate_SpO2Healthy(t *testing.T) {
	window := buildWindow(dayValues{spo2: f(96.5)})

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)

	assert.Equal(t, []string{"Your blood oxygen level of 96.5% is within the healthy range."}, set.Insights)
}

func TestGenerate_CompositeAndHydration(t *testing.T) {
	window := buildWindow(dayValues{readiness: f(55), sleep: f(55), activity: f(65)})

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)
	general := set.Recommendations[models.CategoryGeneral]
	require.Len(t, general, 3)
	assert.True(t, strings.HasPrefix(general[0], "Your overall health metrics are below optimal levels"))
	assert.True(t, strings.HasPrefix(general[2], "Ensure adequate hydration by drinking at least half your body weight"))

	weighted := newTestEngine(models.MUserProfile{WeightLb: f(181)}).Generate(window, window, nil)
	general = weighted.Recommendations[models.CategoryGeneral]
	assert.Equal(t, "Ensure adequate hydration by drinking at least 91 ounces of water daily (half your body weight in pounds), especially on active days and during recovery.", general[len(general)-1])
}

func TestGenerate_HydrationFromReadinessAlone(t *testing.T) {
	window := buildWindow(dayValues{readiness: f(65)})

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)
	assert.Equal(t, []string{"Ensure adequate hydration by drinking at least half your body weight (in pounds) in ounces of water daily, especially on active days and during recovery."},
		set.Recommendations[models.CategoryGeneral])

	weighted := newTestEngine(models.MUserProfile{WeightLb: f(150)}).Generate(window, window, nil)
	assert.Equal(t, []string{"Ensure adequate hydration by drinking at least 75 ounces of water daily (half your body weight in pounds), especially on active days and during recovery."},
		weighted.Recommendations[models.CategoryGeneral])

	healthy := buildWindow(dayValues{readiness: f(70), sleep: f(40)})
	set = newTestEngine(models.MUserProfile{}).Generate(healthy, healthy, nil)
	assert.False(t, containsText(set.Recommendations[models.CategoryGeneral], "hydration"))
}

func TestGenerate_SpO2LowHasNoRecommendation(t *testing.T) {
	window := buildWindow(dayValues{spo2: f(93)})

	set := newTestEngine(models.MUserProfile{}).Generate(window, window, nil)
	assert.Equal(t, []string{"⚠️ Your blood oxygen level of 93% is below the optimal range."}, set.Alerts)
	assert.False(t, set.HasRecommendations())
}

func TestGenerate_ProfileTips(t *testing.T) {
	window := buildWindow(dayValues{readiness: f(80), hrv: f(60)})
	profile := models.MUserProfile{Gender: models.GenderFemale, HeightIn: f(64), WeightLb: f(180)}

	set := newTestEngine(profile).Generate(window, window, nil)

	assert.Equal(t, []string{"Female HRV can fluctuate with hormonal cycles. Consider tracking your menstrual cycle alongside your health metrics to identify patterns."},
		set.Recommendations[models.CategoryRecovery])
	assert.Equal(t, []string{"Based on your height and weight profile, focusing on consistent physical activity and nutrition could provide health benefits beyond just performance improvements."},
		set.Recommendations[models.CategoryGeneral])
}

func TestStrictlyDecreasing(t *testing.T) {
	assert.True(t, StrictlyDecreasing([]float64{100, 5, 4, 3, 2, 1}, 5), "only the tail counts")
	assert.False(t, StrictlyDecreasing([]float64{5, 4, 3, 2}, 5))
	assert.False(t, StrictlyDecreasing([]float64{5, 4, 4, 2, 1}, 5))
	assert.False(t, StrictlyDecreasing([]float64{5, 4}, 1))
}
