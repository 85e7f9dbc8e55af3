package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"biometric-insights/src/models"
	"biometric-insights/src/utils"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------

// BuildReport assembles the structured report of one run, including its
// rendered text.
func BuildReport(profileDir string, profile models.MUserProfile, timeline, recent *models.MTimeline, set *models.MRecommendationSet, now time.Time) *models.MReport {
	if set == nil {
		set = models.NewRecommendationSet()
	}
	r := &models.MReport{
		ID:          uuid.NewString(),
		GeneratedAt: now.UTC(),
		ProfileDir:  profileDir,
		Profile:     profile,
		Result:      set,
		Text:        Format(timeline, recent, set),
	}
	if timeline != nil {
		r.Base = timeline.Base
		r.Days = len(timeline.Rows)
	}
	if latest := recent.Latest(); latest != nil {
		r.ReportDate = latest.Day
		r.RecentDays = len(recent.Rows)
		r.Status = StatusSnapshot(latest)
		r.Trends = TrendLines(latest)
	}
	return r
}

// -----------------------------------------------------------------------------

// FileName is health_report_YYYYMMDD_HHMMSS with the extension of format.
func FileName(generatedAt time.Time, format string) string {
	ext := "txt"
	if format == "json" {
		ext = "json"
	}
	return fmt.Sprintf("health_report_%s.%s", generatedAt.Local().Format(utils.ReportTimestampLayout), ext)
}

// Save writes the report to dir, creating it if needed, and returns the path.
func Save(dir string, r *models.MReport, format string) (string, error) {
	if r == nil {
		return "", fmt.Errorf("no report to save")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir '%s': %w", dir, err)
	}

	var data []byte
	switch strings.ToLower(format) {
	case "json":
		body, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal report: %w", err)
		}
		data = body
	default:
		data = []byte(r.Text)
	}

	path := filepath.Join(dir, FileName(r.GeneratedAt, format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report '%s': %w", path, err)
	}
	return path, nil
}

// -----------------------------------------------------------------------------

// SaveTimeline exports the timeline next to a saved report as csv or xlsx.
func SaveTimeline(reportPath string, timeline *models.MTimeline, format string) (string, error) {
	base := strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + "_timeline"

	switch format {
	case "csv":
		path := base + ".csv"
		file, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("failed to create '%s': %w", path, err)
		}
		defer file.Close()
		if err := WriteTimelineCSV(file, timeline); err != nil {
			return "", err
		}
		return path, nil
	case "xlsx":
		path := base + ".xlsx"
		data, err := TimelineXLSX(timeline)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write '%s': %w", path, err)
		}
		return path, nil
	default:
		return "", fmt.Errorf("unsupported timeline export: %s", format)
	}
}
