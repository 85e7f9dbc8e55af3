package models

import "time"

// MStatusMetric is one line of the current status snapshot.
type MStatusMetric struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// MTrendLine is one entry of the weekly trends section.
type MTrendLine struct {
	Signal  Signal  `json:"signal"`
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// MReport is the persisted and served result of one pipeline run.
type MReport struct {
	ID          string              `json:"id"`
	GeneratedAt time.Time           `json:"generated_at"`
	ReportDate  time.Time           `json:"report_date"`
	ProfileDir  string              `json:"profile_dir"`
	Profile     MUserProfile        `json:"profile"`
	Base        SourceKey           `json:"base"`
	Days        int                 `json:"days"`
	RecentDays  int                 `json:"recent_days"`
	Status      []MStatusMetric     `json:"status"`
	Trends      []MTrendLine        `json:"trends"`
	Result      *MRecommendationSet `json:"result"`
	Text        string              `json:"text"`
}

// -----------------------------------------------------------------------------

// Event types pushed to WebSocket subscribers.
const (
	EventInitial = "INITIAL"
	EventUpdate  = "UPDATE"
)

// MReportEvent is the WebSocket payload. Timeline is only sent to clients
// that asked for it.
type MReportEvent struct {
	Type      string     `json:"type"`
	Report    *MReport   `json:"report"`
	Timeline  *MTimeline `json:"timeline,omitempty"`
	Timestamp int64      `json:"timestamp"`
}

// MClientCommand is a message sent by a WebSocket client.
type MClientCommand struct {
	Command         string `json:"command"` // subscribe | refresh
	IncludeTimeline bool   `json:"include_timeline"`
}
