package interfaces

import "biometric-insights/src/models"

// -----------------------------------------------------------------------------
// IReportStore defines the contract for report history storage.
// -----------------------------------------------------------------------------

type IReportStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveReport stores one generated report.
	SaveReport(report *models.MReport) error

	// -----------------------------------------------------------------------------
	// SaveTimeline stores the daily rows a report was computed from
	SaveTimeline(reportID string, timeline *models.MTimeline) error

	// -----------------------------------------------------------------------------

	// LatestReport returns the most recent report, or nil when none is stored.
	LatestReport() (*models.MReport, error)

	// -----------------------------------------------------------------------------

	// CleanupOldReports removes reports older than retentionDays.
	CleanupOldReports(retentionDays int) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
