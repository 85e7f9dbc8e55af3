package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"biometric-insights/src/helpers"
	"biometric-insights/src/interfaces"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"
	"biometric-insights/src/utils"
)

// Connection retry policy for Initialize.
const (
	connectRetries   = 3
	connectBaseDelay = 500 * time.Millisecond
)

// timelineColumns are the per-day values kept for every stored report.
var timelineColumns = []string{
	"readiness_score",
	"sleep_score",
	"activity_score",
	"steps",
	"spo2",
	"avg_hr",
	"readiness_trend",
	"sleep_trend",
	"activity_trend",
	"hrv_trend",
}

// -----------------------------------------------------------------------------

// Open builds and initializes the store selected by storage.db_type. The
// "none" type returns a nil store.
func Open(cfg *models.MConfig, appLogger *logger.Logger) (interfaces.IReportStore, error) {
	var store interfaces.IReportStore

	switch cfg.Storage.DBType {
	case "none":
		appLogger.Info("Report persistence disabled")
		return nil, nil
	case "postgres":
		store = NewPostgresStore(cfg, logger.NewLogger(cfg, "PostgresStore"))
	default:
		store = NewSQLiteStore(cfg, logger.NewLogger(cfg, "SQLiteStore"))
	}

	if err := store.Initialize(); err != nil {
		return nil, helpers.NewDatabaseError("failed to initialize report store", err)
	}
	return store, nil
}

// -----------------------------------------------------------------------------

// timelineValues flattens one row into the timelineColumns order. Missing
// values are nil pointers, stored as NULL.
func timelineValues(row *models.MTimelineRow) []any {
	var avgHR *float64
	if row.HeartRate != nil {
		avgHR = models.Float(row.HeartRate.AvgHR)
	}
	return []any{
		row.ReadinessScore(),
		row.SleepScore(),
		row.ActivityScore(),
		row.Steps(),
		row.SpO2Percentage(),
		avgHR,
		row.Trend(models.SignalReadiness),
		row.Trend(models.SignalSleep),
		row.Trend(models.SignalActivity),
		row.Trend(models.SignalHRV),
	}
}

func dayKey(row *models.MTimelineRow) string {
	return row.Day.Format(utils.DayLayout)
}

// placeholders renders "?, ?, ..." or "$from, $from+1, ..." for n values.
func placeholders(n, from int, numbered bool) string {
	parts := make([]string, n)
	for i := range parts {
		if numbered {
			parts[i] = fmt.Sprintf("$%d", from+i)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// upsertAssignments renders "col = excluded.col" for every timeline column.
func upsertAssignments() string {
	parts := make([]string, len(timelineColumns))
	for i, c := range timelineColumns {
		parts[i] = fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return strings.Join(parts, ", ")
}

// -----------------------------------------------------------------------------

func encodeReport(r *models.MReport) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode report %s: %w", r.ID, err)
	}
	return string(body), nil
}

func decodeReport(body string) (*models.MReport, error) {
	var r models.MReport
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("failed to decode stored report: %w", err)
	}
	return &r, nil
}

func retentionCutoff(retentionDays int) int64 {
	return time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()
}
