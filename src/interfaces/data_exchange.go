package interfaces

import "biometric-insights/src/models"

// -----------------------------------------------------------------------------
// IReportPublisher shares generated reports with external listeners.
// -----------------------------------------------------------------------------

type IReportPublisher interface {
	// -----------------------------------------------------------------------------
	// Publish replaces the served report and pushes it to subscribers.
	Publish(report *models.MReport, timeline *models.MTimeline)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
