package recommend

import (
	"fmt"
	"math"

	"biometric-insights/src/analysis/core"
	"biometric-insights/src/models"
)

// Kind says which list an emission lands in.
type Kind int

const (
	KindInsight Kind = iota
	KindAlert
	KindRecommendation
)

// Score bands shared by sleep, readiness, activity and HRV balance.
const (
	bandExcellent = 85.0
	bandGood      = 70.0
	bandModerate  = 50.0

	highActivityScore = 90.0
)

// Emission is one message a rule produces. Text is used verbatim unless Args
// is set, in which case it is a format string.
type Emission struct {
	Kind     Kind
	Category models.Category
	Text     string
	Args     func(c *Context) []any
}

// Rule pairs a predicate with the messages it emits, in order.
type Rule struct {
	Name string
	When func(c *Context) bool
	Emit []Emission
}

// Render expands an emission against ctx.
func (e Emission) Render(ctx *Context) string {
	if e.Args == nil {
		return e.Text
	}
	return fmt.Sprintf(e.Text, e.Args(ctx)...)
}

// -----------------------------------------------------------------------------

func insight(text string, args func(*Context) []any) Emission {
	return Emission{Kind: KindInsight, Text: text, Args: args}
}

func alert(text string, args func(*Context) []any) Emission {
	return Emission{Kind: KindAlert, Text: text, Args: args}
}

func rec(category models.Category, text string) Emission {
	return Emission{Kind: KindRecommendation, Category: category, Text: text}
}

func recf(category models.Category, text string, args func(*Context) []any) Emission {
	return Emission{Kind: KindRecommendation, Category: category, Text: text, Args: args}
}

// -----------------------------------------------------------------------------
// Accessors on the latest row
// -----------------------------------------------------------------------------

func sleepScore(c *Context) *float64     { return c.Latest.SleepScore() }
func readinessScore(c *Context) *float64 { return c.Latest.ReadinessScore() }
func activityScore(c *Context) *float64  { return c.Latest.ActivityScore() }
func hrvBalance(c *Context) *float64     { return c.Latest.HRVBalance() }

func sleepContributors(c *Context) models.MSleepContributors {
	if c.Latest.Sleep == nil {
		return models.MSleepContributors{}
	}
	return c.Latest.Sleep.Contributors
}

func readinessContributors(c *Context) models.MReadinessContributors {
	if c.Latest.Readiness == nil {
		return models.MReadinessContributors{}
	}
	return c.Latest.Readiness.Contributors
}

func activityContributors(c *Context) models.MActivityContributors {
	if c.ActivityContributors == nil {
		return models.MActivityContributors{}
	}
	return *c.ActivityContributors
}

func number(get func(*Context) *float64) func(*Context) []any {
	return func(c *Context) []any { return []any{Number(get(c))} }
}

func trendMagnitude(s models.Signal) func(*Context) []any {
	return func(c *Context) []any { return []any{core.RoundAbsPercent(*c.Latest.Trend(s))} }
}

func band(get func(*Context) *float64, low, high float64) func(*Context) bool {
	return func(c *Context) bool {
		v := get(c)
		if v == nil {
			return false
		}
		return *v >= low && *v < high
	}
}

func lowScore(get func(*Context) *float64) func(*Context) bool {
	return func(c *Context) bool { return Below(get(c), c.Rules.LowScore) }
}

// lowContributor fires when the domain score is low and the contributor is
// present and under the contributor threshold.
func lowContributor(score func(*Context) *float64, get func(*Context) *float64) func(*Context) bool {
	return func(c *Context) bool {
		return Below(score(c), c.Rules.LowScore) && Below(get(c), c.Rules.LowContributor)
	}
}

func trendBelow(score func(*Context) *float64, s models.Signal, limit func(*Context) float64) func(*Context) bool {
	return func(c *Context) bool {
		return score(c) != nil && Below(c.Latest.Trend(s), limit(c))
	}
}

func allScores(c *Context) bool {
	return readinessScore(c) != nil && sleepScore(c) != nil && activityScore(c) != nil
}

// -----------------------------------------------------------------------------
// Rule table
// -----------------------------------------------------------------------------

// DefaultRules is the ordered rule table. Output order is table order.
func DefaultRules() []Rule {
	var rules []Rule
	rules = append(rules, sleepRules()...)
	rules = append(rules, readinessRules()...)
	rules = append(rules, activityRules()...)
	rules = append(rules, correlationRules()...)
	rules = append(rules, patternRules()...)
	rules = append(rules, metricRules()...)
	rules = append(rules, lifestyleRules()...)
	rules = append(rules, profileRules()...)
	return rules
}

// -----------------------------------------------------------------------------

func sleepRules() []Rule {
	deep := func(c *Context) *float64 { return sleepContributors(c).DeepSleep }
	rem := func(c *Context) *float64 { return sleepContributors(c).REMSleep }
	efficiency := func(c *Context) *float64 { return sleepContributors(c).Efficiency }
	latency := func(c *Context) *float64 { return sleepContributors(c).Latency }
	timing := func(c *Context) *float64 { return sleepContributors(c).Timing }

	return []Rule{
		{Name: "sleep_excellent", When: band(sleepScore, bandExcellent, math.Inf(1)), Emit: []Emission{
			insight("Your sleep score of %s is excellent. Keep maintaining your current sleep habits.", number(sleepScore)),
		}},
		{Name: "sleep_good", When: band(sleepScore, bandGood, bandExcellent), Emit: []Emission{
			insight("Your sleep score of %s is good. With some minor adjustments, you could optimize your sleep further.", number(sleepScore)),
		}},
		{Name: "sleep_moderate", When: band(sleepScore, bandModerate, bandGood), Emit: []Emission{
			insight("Your sleep score of %s is moderate. There's room for improvement in your sleep quality.", number(sleepScore)),
		}},
		{Name: "sleep_low", When: band(sleepScore, math.Inf(-1), bandModerate), Emit: []Emission{
			insight("Your sleep score of %s is low. Prioritizing sleep improvements could significantly benefit your overall health.", number(sleepScore)),
		}},
		{Name: "sleep_below_threshold", When: lowScore(sleepScore), Emit: []Emission{
			rec(models.CategorySleep, "Establish a consistent sleep schedule by going to bed and waking up at the same time every day, even on weekends."),
			rec(models.CategorySleep, "Create a relaxing bedtime routine that signals to your body it's time to wind down (reading, gentle stretching, or meditation)."),
		}},
		{Name: "sleep_deep", When: lowContributor(sleepScore, deep), Emit: []Emission{
			rec(models.CategorySleep, "To improve deep sleep: avoid alcohol and caffeine at least 6 hours before bedtime, and consider taking a warm bath 1-2 hours before sleep."),
			rec(models.CategorySleep, "Regular exercise (but not within 2 hours of bedtime) can help increase your deep sleep quality."),
		}},
		{Name: "sleep_rem", When: lowContributor(sleepScore, rem), Emit: []Emission{
			rec(models.CategorySleep, "To improve REM sleep: practice stress-reduction techniques like meditation or deep breathing before bed."),
			rec(models.CategorySleep, "Avoid using electronic devices 1 hour before bedtime as blue light can suppress melatonin production and reduce REM sleep."),
		}},
		{Name: "sleep_efficiency", When: lowContributor(sleepScore, efficiency), Emit: []Emission{
			rec(models.CategorySleep, "To improve sleep efficiency: ensure your bedroom is cool (65-68°F/18-20°C), dark, and quiet."),
			rec(models.CategorySleep, "Consider using blackout curtains, white noise machines, or earplugs if environmental factors are disrupting your sleep."),
		}},
		{Name: "sleep_latency", When: lowContributor(sleepScore, latency), Emit: []Emission{
			rec(models.CategorySleep, "To reduce the time it takes to fall asleep: practice progressive muscle relaxation or guided imagery before bed."),
			rec(models.CategorySleep, "Avoid large meals, intense exercise, and stressful activities close to bedtime."),
		}},
		{Name: "sleep_timing", When: lowContributor(sleepScore, timing), Emit: []Emission{
			rec(models.CategorySleep, "Your sleep timing is irregular. Try to go to bed within the same 30-minute window each night to regulate your circadian rhythm."),
		}},
		{Name: "sleep_trend_decline", When: trendBelow(sleepScore, models.SignalSleep, func(c *Context) float64 { return c.Rules.SleepTrendAlertPct }), Emit: []Emission{
			alert("⚠️ Your sleep quality has declined by %d%% compared to your baseline.", trendMagnitude(models.SignalSleep)),
			rec(models.CategorySleep, "Your sleep quality has been declining. Consider tracking potential disruptors like stress, late meals, or screen time."),
		}},
	}
}

// -----------------------------------------------------------------------------

func readinessRules() []Rule {
	hrv := func(c *Context) *float64 { return readinessContributors(c).HRVBalance }
	recovery := func(c *Context) *float64 { return readinessContributors(c).RecoveryIndex }
	rhr := func(c *Context) *float64 { return readinessContributors(c).RestingHeartRate }
	temperature := func(c *Context) *float64 { return readinessContributors(c).BodyTemperature }

	return []Rule{
		{Name: "readiness_excellent", When: band(readinessScore, bandExcellent, math.Inf(1)), Emit: []Emission{
			insight("Your readiness score of %s is excellent. Your body is well-recovered and prepared for challenging activities.", number(readinessScore)),
		}},
		{Name: "readiness_good", When: band(readinessScore, bandGood, bandExcellent), Emit: []Emission{
			insight("Your readiness score of %s is good. You're ready for moderate to high-intensity activities.", number(readinessScore)),
		}},
		{Name: "readiness_moderate", When: band(readinessScore, bandModerate, bandGood), Emit: []Emission{
			insight("Your readiness score of %s is moderate. Consider moderate-intensity activities today.", number(readinessScore)),
		}},
		{Name: "readiness_low", When: band(readinessScore, math.Inf(-1), bandModerate), Emit: []Emission{
			insight("Your readiness score of %s is low. Your body is signaling a need for recovery.", number(readinessScore)),
		}},
		{Name: "readiness_below_threshold", When: lowScore(readinessScore), Emit: []Emission{
			rec(models.CategoryRecovery, "Your body is showing signs of needing recovery. Consider a rest day or light activity like walking or gentle yoga."),
			rec(models.CategoryRecovery, "Focus on proper nutrition with emphasis on protein intake to support recovery and anti-inflammatory foods like berries, fatty fish, and leafy greens."),
		}},
		{Name: "readiness_hrv_balance", When: lowContributor(readinessScore, hrv), Emit: []Emission{
			rec(models.CategoryRecovery, "Your HRV balance is low, indicating potential stress or incomplete recovery. Practice stress management techniques like box breathing (4 counts in, 4 counts hold, 4 counts out, 4 counts hold)."),
			rec(models.CategoryRecovery, "Consider adding mindfulness meditation to your routine - even 5-10 minutes daily can help improve HRV and stress resilience."),
		}},
		{Name: "readiness_recovery_index", When: lowContributor(readinessScore, recovery), Emit: []Emission{
			rec(models.CategoryRecovery, "Your recovery index is low. Ensure you're getting adequate rest and consider reducing training intensity for 1-2 days."),
			rec(models.CategoryRecovery, "Try active recovery techniques like foam rolling, gentle stretching, or a light walk to promote blood flow without adding stress."),
		}},
		{Name: "readiness_resting_heart_rate", When: lowContributor(readinessScore, rhr), Emit: []Emission{
			rec(models.CategoryRecovery, "Your resting heart rate is elevated compared to your baseline. This may indicate incomplete recovery or potential illness."),
			rec(models.CategoryRecovery, "Stay well-hydrated and consider increasing your electrolyte intake, as dehydration can elevate resting heart rate."),
		}},
		{Name: "readiness_body_temperature", When: lowContributor(readinessScore, temperature), Emit: []Emission{
			rec(models.CategoryRecovery, "Your body temperature is elevated. Monitor for other signs of illness and prioritize rest and hydration."),
		}},
		{Name: "readiness_trend_decline", When: trendBelow(readinessScore, models.SignalReadiness, func(c *Context) float64 { return c.Rules.ReadinessTrendAlertPct }), Emit: []Emission{
			alert("⚠️ Your readiness has declined by %d%% compared to your baseline.", trendMagnitude(models.SignalReadiness)),
			rec(models.CategoryRecovery, "Your readiness has been declining significantly. Consider taking a recovery week with reduced training volume and intensity."),
		}},
	}
}

// -----------------------------------------------------------------------------

func activityRules() []Rule {
	steps := func(c *Context) *float64 { return c.Latest.Steps() }
	targets := func(c *Context) *float64 { return activityContributors(c).MeetDailyTargets }
	hourly := func(c *Context) *float64 { return activityContributors(c).MoveEveryHour }
	frequency := func(c *Context) *float64 { return activityContributors(c).TrainingFrequency }

	return []Rule{
		{Name: "activity_excellent", When: band(activityScore, bandExcellent, math.Inf(1)), Emit: []Emission{
			insight("Your activity score of %s is excellent. You're maintaining a high level of physical activity.", number(activityScore)),
		}},
		{Name: "activity_good", When: band(activityScore, bandGood, bandExcellent), Emit: []Emission{
			insight("Your activity score of %s is good. You're meeting recommended activity levels.", number(activityScore)),
		}},
		{Name: "activity_moderate", When: band(activityScore, bandModerate, bandGood), Emit: []Emission{
			insight("Your activity score of %s is moderate. Increasing your daily movement would be beneficial.", number(activityScore)),
		}},
		{Name: "activity_low", When: band(activityScore, math.Inf(-1), bandModerate), Emit: []Emission{
			insight("Your activity score of %s is low. Finding ways to incorporate more movement into your day could improve your health.", number(activityScore)),
		}},
		{Name: "activity_below_threshold", When: lowScore(activityScore), Emit: []Emission{
			rec(models.CategoryActivity, "Try to incorporate more movement throughout your day - take the stairs, park farther away, or schedule short walking breaks every hour."),
			rec(models.CategoryActivity, "Set a goal to achieve at least 7,500 steps daily, gradually increasing to 10,000 steps as your fitness improves."),
		}},
		{Name: "activity_low_steps", When: func(c *Context) bool {
			return Below(activityScore(c), c.Rules.LowScore) && Below(steps(c), c.Rules.LowStepCount)
		}, Emit: []Emission{
			recf(models.CategoryActivity, "Your step count of %d is below recommended levels. Aim to add 1,000 more steps each day this week.",
				func(c *Context) []any { return []any{int(*steps(c))} }),
		}},
		{Name: "activity_daily_targets", When: lowContributor(activityScore, targets), Emit: []Emission{
			rec(models.CategoryActivity, "You're not consistently meeting your daily activity targets. Consider setting reminders or scheduling specific times for movement breaks."),
		}},
		{Name: "activity_move_every_hour", When: lowContributor(activityScore, hourly), Emit: []Emission{
			rec(models.CategoryActivity, "You're spending too much time sedentary. Set a timer to stand up and move for at least 2-3 minutes every hour."),
		}},
		{Name: "activity_training_frequency", When: lowContributor(activityScore, frequency), Emit: []Emission{
			rec(models.CategoryActivity, "Your training frequency is low. Aim for at least 3-4 days of structured exercise per week, including both cardio and strength training."),
		}},
		{Name: "activity_high_readiness_moderate", When: func(c *Context) bool {
			a := activityScore(c)
			return AtLeast(a, c.Rules.LowScore) && *a > highActivityScore && Below(readinessScore(c), bandGood)
		}, Emit: []Emission{
			rec(models.CategoryActivity, "Your activity level is high but your readiness is moderate. Consider balancing intense workouts with adequate recovery."),
			rec(models.CategoryActivity, "Incorporate active recovery days with light activities like walking, swimming, or yoga between high-intensity training days."),
		}},
	}
}

// -----------------------------------------------------------------------------

func correlationRules() []Rule {
	imbalance := func(sleepHigher bool) func(*Context) bool {
		return func(c *Context) bool {
			s, a := sleepScore(c), activityScore(c)
			if s == nil || a == nil || math.Abs(*s-*a) <= c.Rules.ImbalanceGap {
				return false
			}
			return (*s > *a) == sleepHigher
		}
	}

	return []Rule{
		{Name: "balance_sleep_higher", When: imbalance(true), Emit: []Emission{
			insight("Your sleep quality is significantly better than your activity level. This suggests you have a good foundation for increasing your physical activity.", nil),
			rec(models.CategoryGeneral, "You have good sleep quality but lower activity. This is an opportunity to gradually increase your physical activity while maintaining your good sleep habits."),
		}},
		{Name: "balance_activity_higher", When: imbalance(false), Emit: []Emission{
			insight("Your activity level is significantly higher than your sleep quality. This imbalance might affect your recovery and performance.", nil),
			rec(models.CategoryGeneral, "Your high activity level isn't matched by adequate sleep quality. Prioritize sleep improvements to support your active lifestyle and enhance recovery."),
		}},
		{Name: "hrv_next_day_sleep", When: func(c *Context) bool {
			return len(c.HRVSeries) >= 3 && len(c.SleepSeries) >= 3 &&
				len(c.NextDaySleepAfterLow) >= 2 && AllBelow(c.NextDaySleepAfterLow, c.Rules.LowContributor)
		}, Emit: []Emission{
			insight("There appears to be a correlation between your low HRV days and poor sleep quality the following night.", nil),
			rec(models.CategoryGeneral, "Your low HRV days are often followed by poor sleep. On days with low HRV, consider extra stress management techniques and earlier bedtimes."),
		}},
	}
}

// -----------------------------------------------------------------------------

func patternRules() []Rule {
	return []Rule{
		{Name: "consecutive_poor_sleep", When: func(c *Context) bool {
			n := c.Rules.PoorSleepStreak
			return len(c.SleepSeries) >= n && AllBelow(c.SleepSeries[len(c.SleepSeries)-n:], c.Rules.LowScore)
		}, Emit: []Emission{
			alert("⚠️ You've had consistently poor sleep for the past %d days. This pattern may impact your overall health and performance.",
				func(c *Context) []any { return []any{c.Rules.PoorSleepStreak} }),
			rec(models.CategorySleep, "You're experiencing a pattern of poor sleep. Consider consulting a healthcare provider if this persists despite implementing sleep hygiene improvements."),
		}},
		{Name: "overtraining", When: func(c *Context) bool {
			return c.HighActivityDays >= c.Rules.MinHighActivityDays && c.LowReadinessDays >= c.Rules.MinLowReadinessDays
		}, Emit: []Emission{
			alert("⚠️ Potential overtraining detected. You've had several high activity days combined with low readiness scores.", nil),
			rec(models.CategoryRecovery, "Signs of overtraining detected. Implement a recovery week with 40-50% reduction in training volume and focus on sleep, nutrition, and stress management."),
		}},
		{Name: "hrv_decline", When: func(c *Context) bool {
			return StrictlyDecreasing(c.HRVSeries, c.Rules.HRVDeclineRun)
		}, Emit: []Emission{
			alert("⚠️ Your HRV has been consistently declining over the past several days, indicating increasing stress or incomplete recovery.", nil),
			rec(models.CategoryRecovery, "Your HRV is showing a consistent downward trend. This is a strong signal to prioritize recovery through reduced training intensity, stress management, and optimal sleep."),
		}},
	}
}

// -----------------------------------------------------------------------------

func metricRules() []Rule {
	spo2 := func(c *Context) *float64 { return c.Latest.SpO2Percentage() }

	return []Rule{
		{Name: "spo2_low", When: func(c *Context) bool { return Below(spo2(c), c.Rules.SpO2Threshold) }, Emit: []Emission{
			alert("⚠️ Your blood oxygen level of %s%% is below the optimal range.", number(spo2)),
		}},
		{Name: "spo2_healthy", When: func(c *Context) bool { return AtLeast(spo2(c), c.Rules.SpO2Threshold) }, Emit: []Emission{
			insight("Your blood oxygen level of %s%% is within the healthy range.", number(spo2)),
		}},
		{Name: "hrv_excellent", When: band(hrvBalance, bandExcellent, math.Inf(1)), Emit: []Emission{
			insight("Your HRV balance is excellent, indicating good autonomic nervous system function and stress resilience.", nil),
		}},
		{Name: "hrv_good", When: band(hrvBalance, bandGood, bandExcellent), Emit: []Emission{
			insight("Your HRV balance is good, suggesting adequate recovery and stress management.", nil),
		}},
		{Name: "hrv_moderate", When: band(hrvBalance, bandModerate, bandGood), Emit: []Emission{
			insight("Your HRV balance is moderate. There's room for improvement in recovery and stress management.", nil),
		}},
		{Name: "hrv_low", When: band(hrvBalance, math.Inf(-1), bandModerate), Emit: []Emission{
			insight("Your HRV balance is low, indicating potential stress, fatigue, or incomplete recovery.", nil),
		}},
	}
}

// -----------------------------------------------------------------------------

func lifestyleRules() []Rule {
	return []Rule{
		{Name: "composite_low", When: func(c *Context) bool {
			if !allScores(c) {
				return false
			}
			avg := (*readinessScore(c) + *sleepScore(c) + *activityScore(c)) / 3
			return avg < c.Rules.LowScore
		}, Emit: []Emission{
			rec(models.CategoryGeneral, "Your overall health metrics are below optimal levels. Focus on the fundamentals: consistent sleep schedule, balanced nutrition, stress management, and appropriate physical activity."),
			rec(models.CategoryGeneral, "Consider tracking your nutrition and water intake, as these can significantly impact your sleep quality, recovery, and energy levels."),
		}},
		{Name: "hydration", When: func(c *Context) bool {
			return Below(readinessScore(c), bandGood) && c.Profile.WeightLb == nil
		}, Emit: []Emission{
			rec(models.CategoryGeneral, "Ensure adequate hydration by drinking at least half your body weight (in pounds) in ounces of water daily, especially on active days and during recovery."),
		}},
		{Name: "hydration_personalised", When: func(c *Context) bool {
			return Below(readinessScore(c), bandGood) && c.Profile.WeightLb != nil
		}, Emit: []Emission{
			recf(models.CategoryGeneral, "Ensure adequate hydration by drinking at least %d ounces of water daily (half your body weight in pounds), especially on active days and during recovery.",
				func(c *Context) []any { return []any{int(math.Ceil(*c.Profile.WeightLb / 2))} }),
		}},
	}
}

// -----------------------------------------------------------------------------

func profileRules() []Rule {
	return []Rule{
		{Name: "profile_male_deep_sleep", When: func(c *Context) bool {
			return c.Profile.Gender == models.GenderMale && Below(sleepContributors(c).DeepSleep, c.Rules.LowContributor)
		}, Emit: []Emission{
			rec(models.CategorySleep, "Men typically need slightly more deep sleep. Consider limiting alcohol consumption which can particularly impact male sleep architecture."),
		}},
		{Name: "profile_female_hrv", When: func(c *Context) bool {
			return c.Profile.Gender == models.GenderFemale && Below(hrvBalance(c), c.Rules.LowContributor)
		}, Emit: []Emission{
			rec(models.CategoryRecovery, "Female HRV can fluctuate with hormonal cycles. Consider tracking your menstrual cycle alongside your health metrics to identify patterns."),
		}},
		{Name: "profile_bmi", When: func(c *Context) bool {
			bmi := c.Profile.BMI()
			return bmi != nil && *bmi > c.Rules.BMIThreshold
		}, Emit: []Emission{
			rec(models.CategoryGeneral, "Based on your height and weight profile, focusing on consistent physical activity and nutrition could provide health benefits beyond just performance improvements."),
		}},
	}
}
