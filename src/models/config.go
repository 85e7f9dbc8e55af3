package models

// MConfig Structure
type MConfig struct {
	Name      string          `yaml:"name"`
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	LogLevel  string          `yaml:"log_level"`
	LogFormat string          `yaml:"log_format"`
	LogFile   MLogFileConfig  `yaml:"log_file"`
	GrpcHost  string          `yaml:"grpc_host"`
	GrpcPort  int             `yaml:"grpc_port"`
	Archive   MArchiveConfig  `yaml:"archive"`
	Analysis  MAnalysisConfig `yaml:"analysis"`
	Rules     MRuleConfig     `yaml:"rules"`
	Storage   MStorageConfig  `yaml:"storage"`
	Output    MOutputConfig   `yaml:"output"`
	Refresh   MRefreshConfig  `yaml:"refresh"`
}

type MLogFileConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"`
}

type MArchiveConfig struct {
	Root       string               `yaml:"root"`
	ProfileDir string               `yaml:"profile_dir"`
	Patterns   map[SourceKey]string `yaml:"patterns"`
}

type MAnalysisConfig struct {
	RecentWindowDays     int `yaml:"recent_window_days"`
	ShortWindow          int `yaml:"short_window"`
	ShortWindowMinPeriod int `yaml:"short_window_min_periods"`
	LongWindow           int `yaml:"long_window"`
	LongWindowMinPeriod  int `yaml:"long_window_min_periods"`
}

// MRuleConfig carries the tunable thresholds of the recommendation rules.
// A zero threshold takes its default. HighActivitySigma is a pointer because
// zero is a meaningful cut-off there (any day above the window mean).
type MRuleConfig struct {
	LowScore               float64  `yaml:"low_score"`
	LowContributor         float64  `yaml:"low_contributor"`
	SleepTrendAlertPct     float64  `yaml:"sleep_trend_alert_pct"`
	ReadinessTrendAlertPct float64  `yaml:"readiness_trend_alert_pct"`
	ImbalanceGap           float64  `yaml:"imbalance_gap"`
	LowStepCount           float64  `yaml:"low_step_count"`
	SpO2Threshold          float64  `yaml:"spo2_threshold"`
	HighActivitySigma      *float64 `yaml:"high_activity_sigma"`
	MinHighActivityDays    int      `yaml:"min_high_activity_days"`
	MinLowReadinessDays    int      `yaml:"min_low_readiness_days"`
	HRVDeclineRun          int      `yaml:"hrv_decline_run"`
	PoorSleepStreak        int      `yaml:"poor_sleep_streak"`
	BMIThreshold           float64  `yaml:"bmi_threshold"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MOutputConfig struct {
	Dir            string `yaml:"dir"`
	Format         string `yaml:"format"`          // text | json
	ExportTimeline string `yaml:"export_timeline"` // "" | csv | xlsx
}

type MRefreshConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"` // 0 disables the ticker
}
