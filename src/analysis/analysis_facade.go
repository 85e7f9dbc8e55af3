package analysis

import (
	"biometric-insights/src/helpers"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"
	"biometric-insights/src/utils"
)

type AnalysisFacade struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	if log == nil {
		log = logger.NewLogger(cfg, "Analysis")
	}
	return &AnalysisFacade{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// analysisConfig falls back to the default windows for zero values.
func (a *AnalysisFacade) analysisConfig() models.MAnalysisConfig {
	var cfg models.MAnalysisConfig
	if a.Config != nil {
		cfg = a.Config.Analysis
	}
	if cfg.RecentWindowDays <= 0 {
		cfg.RecentWindowDays = utils.DefaultRecentWindowDays
	}
	if cfg.ShortWindow <= 0 {
		cfg.ShortWindow = utils.DefaultShortWindow
	}
	if cfg.ShortWindowMinPeriod <= 0 {
		cfg.ShortWindowMinPeriod = utils.DefaultShortWindowMinPeriod
	}
	if cfg.LongWindow <= 0 {
		cfg.LongWindow = utils.DefaultLongWindow
	}
	if cfg.LongWindowMinPeriod <= 0 {
		cfg.LongWindowMinPeriod = utils.DefaultLongWindowMinPeriod
	}
	return cfg
}

// -----------------------------------------------------------------------------

// Analyze merges the processed sources into a timeline with baselines and
// slices its recent window. Without readiness, sleep or activity it returns
// nil, nil and helpers.ErrInsufficientData.
func (a *AnalysisFacade) Analyze(processed *models.MProcessedData) (*models.MTimeline, *models.MTimeline, error) {
	merged, ok := Merge(processed)
	if !ok || merged.Empty() {
		a.Logger.Error("No daily data available for analysis")
		return nil, nil, helpers.ErrInsufficientData
	}

	timeline := a.ComputeBaselines(merged, processed)
	recent := RecentWindow(timeline, a.analysisConfig().RecentWindowDays)

	a.Logger.Info("Merged %d days (base %s), %d in the recent window",
		len(timeline.Rows), timeline.Base, len(recent.Rows))
	return timeline, recent, nil
}

// -----------------------------------------------------------------------------

// Run preprocesses raw tables and analyzes them in one call.
func (a *AnalysisFacade) Run(raw models.MSourceTables) (*models.MProcessedData, *models.MTimeline, *models.MTimeline, error) {
	processed := a.Preprocess(raw)
	timeline, recent, err := a.Analyze(processed)
	if err != nil {
		return processed, nil, nil, err
	}
	return processed, timeline, recent, nil
}
