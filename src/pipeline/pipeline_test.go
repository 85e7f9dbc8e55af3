package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"biometric-insights/src/config"
	datasource "biometric-insights/src/data_source"
	"biometric-insights/src/data_source/csv"
	"biometric-insights/src/helpers"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	reports   []*models.MReport
	timelines map[string]*models.MTimeline
	cleanups  []int
	saveErr   error
}

func (s *fakeStore) Initialize() error { return nil }
func (s *fakeStore) Close() error      { return nil }

func (s *fakeStore) SaveReport(r *models.MReport) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.reports = append(s.reports, r)
	return nil
}

func (s *fakeStore) SaveTimeline(id string, tl *models.MTimeline) error {
	if s.timelines == nil {
		s.timelines = map[string]*models.MTimeline{}
	}
	s.timelines[id] = tl
	return nil
}

func (s *fakeStore) LatestReport() (*models.MReport, error) {
	if len(s.reports) == 0 {
		return nil, nil
	}
	return s.reports[len(s.reports)-1], nil
}

func (s *fakeStore) CleanupOldReports(days int) error {
	s.cleanups = append(s.cleanups, days)
	return nil
}

// -----------------------------------------------------------------------------

func writeArchive(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "JANE_FEMALE_5_FT_6_IN_140_LB")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func dailyCSV(header string, days int, row func(i int) string) string {
	var b strings.Builder
	b.WriteString(header + "\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		fmt.Fprintf(&b, "%s;%s\n", start.AddDate(0, 0, i).Format("2006-01-02"), row(i))
	}
	return b.String()
}

func newTestPipeline(t *testing.T, store *fakeStore) (*Pipeline, *models.MConfig) {
	t.Helper()
	cfg := config.Default().GetModel()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "reports")
	cfg.Output.ExportTimeline = "csv"

	loader, err := datasource.NewMultiSourceLoader(cfg.Archive.Patterns, csv.NewCSVReader(nil), logger.NewNopLogger())
	require.NoError(t, err)

	p := NewPipeline(cfg, loader, nil, logger.NewNopLogger())
	if store != nil {
		p.Store = store
	}
	p.Now = func() time.Time { return time.Date(2024, 1, 11, 7, 0, 0, 0, time.UTC) }
	return p, cfg
}

// -----------------------------------------------------------------------------

func TestRun_EndToEnd(t *testing.T) {
	dir := writeArchive(t, map[string]string{
		"oura_daily-readiness_2024-01-11T00-00-00.csv": dailyCSV("day;score;contributors_hrv_balance", 10, func(i int) string {
			return fmt.Sprintf("%d;70", 80-i*2)
		}),
		"oura_daily-sleep_2024-01-11T00-00-00.csv": dailyCSV("day;score", 10, func(int) string {
			return "75"
		}),
		"oura_daily-activity_2024-01-11T00-00-00.csv": dailyCSV("day;score;steps;total_calories", 10, func(int) string {
			return "70;8000;2300"
		}),
	})

	store := &fakeStore{}
	p, cfg := newTestPipeline(t, store)

	result, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	require.NotNil(t, result.Report)

	assert.Equal(t, models.SourceReadiness, result.Timeline.Base)
	assert.Len(t, result.Timeline.Rows, 10)
	assert.Equal(t, models.GenderFemale, result.Report.Profile.Gender)
	assert.Contains(t, result.Report.Text, "Report Date: 2024-01-10")
	assert.Contains(t, result.Report.Text, "Readiness Score: 62/100")

	require.FileExists(t, result.ReportPath)
	assert.Equal(t, "health_report_20240111_070000.txt", filepath.Base(result.ReportPath))
	assert.FileExists(t, result.TimelinePath)
	data, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	assert.Equal(t, result.Report.Text, string(data))

	require.Len(t, store.reports, 1)
	assert.Same(t, result.Timeline, store.timelines[result.Report.ID])
	assert.Equal(t, []int{cfg.Storage.RetentionDays}, store.cleanups)
	assert.Contains(t, Describe(result), "2024-01-10")
}

func TestRun_InsufficientData(t *testing.T) {
	dir := writeArchive(t, map[string]string{
		"oura_daily-spo2_2024-01-11T00-00-00.csv": "day;spo2_percentage\n2024-01-01;97\n",
	})
	store := &fakeStore{}
	p, cfg := newTestPipeline(t, store)

	result, err := p.Run(context.Background(), dir)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, helpers.ErrInsufficientData))

	var insufficient *helpers.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, dir, insufficient.ProfileDir)

	assert.Empty(t, store.reports)
	_, statErr := os.Stat(cfg.Output.Dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_StoreFailureIsNotFatal(t *testing.T) {
	dir := writeArchive(t, map[string]string{
		"oura_daily-sleep_2024-01-11T00-00-00.csv": "day;score\n2024-01-01;70\n",
	})
	p, _ := newTestPipeline(t, &fakeStore{saveErr: errors.New("disk full")})

	result, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, models.SourceSleep, result.Report.Base)
	assert.Equal(t, 1, p.Errors.ErrorCount)
}

func TestRun_MissingProfile(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "nobody"))

	var dsErr *helpers.DataSourceError
	assert.True(t, errors.As(err, &dsErr))
}

// -----------------------------------------------------------------------------

func TestResolveProfileDir(t *testing.T) {
	archive := models.MArchiveConfig{Root: "Archive", ProfileDir: "JOHN_MALE"}

	dir, err := ResolveProfileDir(archive, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Archive", "JOHN_MALE"), dir)

	dir, err = ResolveProfileDir(archive, "JANE")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Archive", "JANE"), dir)

	dir, err = ResolveProfileDir(archive, filepath.Join("other", "JANE"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("other", "JANE"), dir)

	_, err = ResolveProfileDir(models.MArchiveConfig{Root: "Archive"}, "")
	assert.Error(t, err)
}
