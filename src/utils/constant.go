package utils

// -----------------------------------------------------------------------------

// Rolling baseline windows, counted in rows of the merged timeline.
const (
	DefaultShortWindow          = 7
	DefaultShortWindowMinPeriod = 1
	DefaultLongWindow           = 14
	DefaultLongWindowMinPeriod  = 7

	// DefaultRecentWindowDays is the span of the recent window, inclusive of
	// both ends.
	DefaultRecentWindowDays = 7

	// ReportTimestampLayout names saved reports.
	ReportTimestampLayout = "20060102_150405"

	// DayLayout is the canonical date rendering.
	DayLayout = "2006-01-02"
)
