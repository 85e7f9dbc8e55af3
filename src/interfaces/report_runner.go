package interfaces

import (
	"context"

	"biometric-insights/src/models"
)

// -----------------------------------------------------------------------------
// IReportRunner regenerates the report of one profile on demand.
// -----------------------------------------------------------------------------

type IReportRunner interface {

	// Refresh runs the whole pipeline once and returns the new report with
	// the timeline it was computed from.
	Refresh(ctx context.Context) (*models.MReport, *models.MTimeline, error)
}
