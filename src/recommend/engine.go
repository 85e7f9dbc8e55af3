package recommend

import (
	"biometric-insights/src/config"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"
)

// Engine evaluates an ordered rule table against the recent window.
type Engine struct {
	Rules   []Rule
	Config  models.MRuleConfig
	Profile models.MUserProfile
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

// NewEngine builds an engine over DefaultRules. Zero thresholds in cfg take
// their default values; an unset HighActivitySigma becomes 1.
func NewEngine(cfg models.MRuleConfig, profile models.MUserProfile, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewLogger(nil, "Recommend")
	}
	return &Engine{
		Rules:   DefaultRules(),
		Config:  config.DefaultRules(cfg),
		Profile: profile,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Generate runs every rule in table order. An empty or nil recent window
// yields an empty set. timeline is accepted for symmetry with the report
// formatter; every rule reads the recent window only.
func (e *Engine) Generate(timeline, recent *models.MTimeline, processed *models.MProcessedData) *models.MRecommendationSet {
	set := models.NewRecommendationSet()
	if recent.Empty() {
		e.Logger.Info("No recent data available for recommendations")
		return set
	}

	ctx := NewContext(recent, processed, e.Profile, e.Config)

	fired := 0
	for _, rule := range e.Rules {
		if !rule.When(ctx) {
			continue
		}
		fired++
		e.Logger.Debug("Rule %s fired", rule.Name)
		for _, em := range rule.Emit {
			text := em.Render(ctx)
			switch em.Kind {
			case KindInsight:
				set.Insights = append(set.Insights, text)
			case KindAlert:
				set.Alerts = append(set.Alerts, text)
			case KindRecommendation:
				set.Recommendations[em.Category] = append(set.Recommendations[em.Category], text)
			}
		}
	}

	e.Logger.Info("%d of %d rules fired: %d insights, %d alerts", fired, len(e.Rules), len(set.Insights), len(set.Alerts))
	return set
}
