package analysis

import (
	"fmt"

	"biometric-insights/src/analysis/core"
	"biometric-insights/src/models"
	"biometric-insights/src/utils"
)

// signalSource is the domain and export column a baseline signal reads.
type signalSource struct {
	Source models.SourceKey
	Column string
}

var signalSources = map[models.Signal]signalSource{
	models.SignalReadiness: {models.SourceReadiness, colScore},
	models.SignalSleep:     {models.SourceSleep, colScore},
	models.SignalActivity:  {models.SourceActivity, colScore},
	models.SignalHRV:       {models.SourceReadiness, ColHRVBalance},
	models.SignalRHR:       {models.SourceReadiness, ColRestingHeartRate},
	models.SignalSteps:     {models.SourceActivity, ColSteps},
}

// BaselineColumns are the derived column names of one signal.
func BaselineColumns(s models.Signal) (avg7, avg14, trend string) {
	return fmt.Sprintf("%s_7d_avg", s), fmt.Sprintf("%s_14d_avg", s), fmt.Sprintf("%s_trend", s)
}

// SignalPresent reports whether the merged timeline carries the column a
// signal is computed from.
func SignalPresent(processed *models.MProcessedData, s models.Signal) bool {
	src, ok := signalSources[s]
	if !ok {
		return false
	}
	return domainPresent(processed, src.Source) && processed.HasColumn(src.Source, src.Column)
}

// -----------------------------------------------------------------------------

// ComputeBaselines returns a copy of timeline with rolling averages and trends
// for every present signal. Absent signals get no baseline columns.
func (a *AnalysisFacade) ComputeBaselines(timeline *models.MTimeline, processed *models.MProcessedData) *models.MTimeline {
	cfg := a.analysisConfig()

	out := &models.MTimeline{
		Base:    timeline.Base,
		Columns: append([]string{}, timeline.Columns...),
		Fields:  append([]models.MColumn{}, timeline.Fields...),
		Rows:    make([]models.MTimelineRow, len(timeline.Rows)),
	}
	copy(out.Rows, timeline.Rows)
	for i := range out.Rows {
		out.Rows[i].Baselines = make(map[models.Signal]models.MBaselinePoint)
	}

	for _, s := range models.BaselineSignals {
		if !SignalPresent(processed, s) {
			continue
		}

		series := out.Values(func(r *models.MTimelineRow) *float64 { return r.SignalValue(s) })
		avg7 := utils.RollingMean(series, cfg.ShortWindow, cfg.ShortWindowMinPeriod)
		avg14 := utils.RollingMean(series, cfg.LongWindow, cfg.LongWindowMinPeriod)

		for i := range out.Rows {
			out.Rows[i].Baselines[s] = models.MBaselinePoint{
				Avg7d:  avg7[i],
				Avg14d: avg14[i],
				Trend:  core.CalculateTrendPercent(series[i], avg7[i]),
			}
		}

		c7, c14, ct := BaselineColumns(s)
		for _, name := range []string{c7, c14, ct} {
			out.Columns = append(out.Columns, name)
			out.Fields = append(out.Fields, models.MColumn{Name: name, Source: models.SourceBaseline, Field: name})
		}
	}

	return out
}
