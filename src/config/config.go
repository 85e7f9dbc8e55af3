package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"biometric-insights/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// DefaultPatterns match the latest export of each source in a profile directory.
var DefaultPatterns = map[models.SourceKey]string{
	models.SourceReadiness: `oura_daily-readiness_.*\.csv$`,
	models.SourceSleep:     `oura_daily-sleep_.*\.csv$`,
	models.SourceHeartRate: `oura_heart-rate_.*\.csv$`,
	models.SourceSpO2:      `oura_daily-spo2_.*\.csv$`,
	models.SourceBedtime:   `oura_bedtime_.*\.csv$`,
	models.SourceActivity:  `oura_daily-activity_.*\.csv$`,
	models.SourceSleepFull: `oura_sleep_.*\.csv$`,
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Fill gaps and apply environment overrides (.env is optional)
	config.ApplyDefaults()
	_ = godotenv.Load()
	config.ApplyEnv()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// GetModel exposes the underlying model to packages that only know MConfig.
func (c *Config) GetModel() *models.MConfig {
	return c.MConfig
}

// -----------------------------------------------------------------------------

// Default returns the default configuration without reading any file.
func Default() *Config {
	config := &Config{MConfig: &models.MConfig{}}
	config.ApplyDefaults()
	return config
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every zero value that has a sensible default.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "biometric-insights"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.GrpcHost == "" {
		c.GrpcHost = c.Host
	}
	if c.GrpcPort == 0 {
		c.GrpcPort = 50051
	}
	if c.LogFile.Path == "" {
		c.LogFile.Path = "logs"
	}
	if c.LogFile.MaxSizeMB == 0 {
		c.LogFile.MaxSizeMB = 10
	}
	if c.LogFile.MaxAgeDays == 0 {
		c.LogFile.MaxAgeDays = 30
	}
	if c.LogFile.MaxBackups == 0 {
		c.LogFile.MaxBackups = 5
	}

	// Archive
	if c.Archive.Root == "" {
		c.Archive.Root = "Archive"
	}
	if c.Archive.Patterns == nil {
		c.Archive.Patterns = make(map[models.SourceKey]string, len(DefaultPatterns))
	}
	for k, p := range DefaultPatterns {
		if _, ok := c.Archive.Patterns[k]; !ok {
			c.Archive.Patterns[k] = p
		}
	}

	// Analysis windows
	a := &c.Analysis
	if a.RecentWindowDays == 0 {
		a.RecentWindowDays = 7
	}
	if a.ShortWindow == 0 {
		a.ShortWindow = 7
	}
	if a.ShortWindowMinPeriod == 0 {
		a.ShortWindowMinPeriod = 1
	}
	if a.LongWindow == 0 {
		a.LongWindow = 14
	}
	if a.LongWindowMinPeriod == 0 {
		a.LongWindowMinPeriod = 7
	}

	c.Rules = DefaultRules(c.Rules)

	// Storage & output
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "biometric_insights.db"
	}
	if c.Storage.RetentionDays == 0 {
		c.Storage.RetentionDays = 90
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "reports"
	}
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
}

// -----------------------------------------------------------------------------

// DefaultRules fills zero thresholds of r with the default rule calibration.
func DefaultRules(r models.MRuleConfig) models.MRuleConfig {
	if r.LowScore == 0 {
		r.LowScore = 60
	}
	if r.LowContributor == 0 {
		r.LowContributor = 70
	}
	if r.SleepTrendAlertPct == 0 {
		r.SleepTrendAlertPct = -10
	}
	if r.ReadinessTrendAlertPct == 0 {
		r.ReadinessTrendAlertPct = -15
	}
	if r.ImbalanceGap == 0 {
		r.ImbalanceGap = 30
	}
	if r.LowStepCount == 0 {
		r.LowStepCount = 5000
	}
	if r.SpO2Threshold == 0 {
		r.SpO2Threshold = 95
	}
	if r.HighActivitySigma == nil {
		r.HighActivitySigma = models.Float(1)
	}
	if r.MinHighActivityDays == 0 {
		r.MinHighActivityDays = 3
	}
	if r.MinLowReadinessDays == 0 {
		r.MinLowReadinessDays = 2
	}
	if r.HRVDeclineRun == 0 {
		r.HRVDeclineRun = 5
	}
	if r.PoorSleepStreak == 0 {
		r.PoorSleepStreak = 3
	}
	if r.BMIThreshold == 0 {
		r.BMIThreshold = 25
	}
	return r
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides selected fields from the process environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("BIOMETRIC_ARCHIVE_ROOT"); v != "" {
		c.Archive.Root = v
	}
	if v := os.Getenv("BIOMETRIC_PROFILE_DIR"); v != "" {
		c.Archive.ProfileDir = v
	}
	if v := os.Getenv("BIOMETRIC_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("BIOMETRIC_DB_TYPE"); v != "" {
		c.Storage.DBType = v
	}
	if v := os.Getenv("BIOMETRIC_DB_CONNECTION"); v != "" {
		c.Storage.DBConnectionString = v
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort <= 1024 || c.GrpcPort > 65535 {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}
	if c.GrpcPort == c.Port && c.GrpcHost == c.Host {
		return fmt.Errorf("grpc and http servers cannot share %s:%d", c.Host, c.Port)
	}

	// Archive
	if c.Archive.Root == "" && c.Archive.ProfileDir == "" {
		return fmt.Errorf("archive root or profile dir must be set")
	}
	for key, pattern := range c.Archive.Patterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid pattern for source '%s': %w", key, err)
		}
	}

	// Analysis
	a := c.Analysis
	if a.RecentWindowDays <= 0 {
		return fmt.Errorf("recent window must be greater than 0 days")
	}
	if a.ShortWindow <= 0 || a.LongWindow <= 0 {
		return fmt.Errorf("rolling windows must be greater than 0")
	}
	if a.ShortWindowMinPeriod > a.ShortWindow || a.LongWindowMinPeriod > a.LongWindow {
		return fmt.Errorf("min periods cannot exceed the window size")
	}

	// Rules
	r := c.Rules
	if r.HighActivitySigma != nil && *r.HighActivitySigma < 0 {
		return fmt.Errorf("high activity sigma cannot be negative")
	}
	if r.HRVDeclineRun < 2 {
		return fmt.Errorf("hrv decline run must be at least 2, got %d", r.HRVDeclineRun)
	}
	if r.MinHighActivityDays < 1 || r.MinLowReadinessDays < 1 || r.PoorSleepStreak < 1 {
		return fmt.Errorf("day counts must be at least 1")
	}

	// Storage
	switch c.Storage.DBType {
	case "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	// Output
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported output format: %s", c.Output.Format)
	}
	switch c.Output.ExportTimeline {
	case "", "csv", "xlsx":
	default:
		return fmt.Errorf("unsupported timeline export: %s", c.Output.ExportTimeline)
	}

	if c.Refresh.IntervalMinutes < 0 {
		return fmt.Errorf("refresh interval cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
