package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"biometric-insights/src/analysis"
	datasource "biometric-insights/src/data_source"
	"biometric-insights/src/helpers"
	"biometric-insights/src/interfaces"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"
	"biometric-insights/src/profile"
	"biometric-insights/src/recommend"
	"biometric-insights/src/report"
	"biometric-insights/src/utils"
)

// Result is everything one run produced.
type Result struct {
	Report       *models.MReport
	Processed    *models.MProcessedData
	Timeline     *models.MTimeline
	Recent       *models.MTimeline
	ReportPath   string
	TimelinePath string
}

// Pipeline runs load, preprocess, analyze, recommend, format and persist in
// one pass. Store may be nil.
type Pipeline struct {
	Config   *models.MConfig
	Loader   interfaces.ISourceLoader
	Store    interfaces.IReportStore
	Analyzer *analysis.AnalysisFacade
	Errors   *helpers.ErrorHandler
	Logger   *logger.Logger
	Now      func() time.Time
}

// -----------------------------------------------------------------------------

func NewPipeline(cfg *models.MConfig, loader interfaces.ISourceLoader, store interfaces.IReportStore, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewLogger(cfg, "Pipeline")
	}
	return &Pipeline{
		Config:   cfg,
		Loader:   loader,
		Store:    store,
		Analyzer: analysis.NewAnalysisFacade(cfg, log),
		Errors:   helpers.NewErrorHandler(log),
		Logger:   log,
		Now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

// ResolveProfileDir turns a profile name into a directory. Empty names fall
// back to the configured profile. Bare names are looked up under the
// archive root; paths are used as given.
func ResolveProfileDir(archive models.MArchiveConfig, name string) (string, error) {
	if name == "" {
		name = archive.ProfileDir
	}
	if name == "" {
		return "", helpers.NewValidationError("no profile directory selected")
	}
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name, nil
	}
	return filepath.Join(archive.Root, name), nil
}

// -----------------------------------------------------------------------------

// Run executes one pass over profileDir. When no base signal exists the
// error is a *helpers.InsufficientDataError.
func (p *Pipeline) Run(ctx context.Context, profileDir string) (*Result, error) {
	start := time.Now()

	// 1. Load every export found in the profile directory
	raw, err := p.Loader.LoadAll(ctx, profileDir)
	if err != nil {
		return nil, p.Errors.Wrap("load sources", err)
	}
	p.Logger.Info("Sources loaded: %s", datasource.Loaded(raw))

	// 2. Preprocess and analyze
	processed, timeline, recent, err := p.Analyzer.Run(raw)
	if err != nil {
		if errors.Is(err, helpers.ErrInsufficientData) {
			return nil, &helpers.InsufficientDataError{ProfileDir: profileDir}
		}
		return nil, err
	}

	// 3. Recommendations for the profile owner
	user := profile.Parse(profileDir)
	engine := recommend.NewEngine(p.Config.Rules, user, p.Logger)
	set := engine.Generate(timeline, recent, processed)

	// 4. Format
	rep := report.BuildReport(profileDir, user, timeline, recent, set, p.Now())
	result := &Result{
		Report:    rep,
		Processed: processed,
		Timeline:  timeline,
		Recent:    recent,
	}

	// 5. Persist
	if err := p.persist(result); err != nil {
		return result, err
	}

	p.Logger.Info("Report %s generated in %s (%d insights, %d alerts)",
		rep.ID, time.Since(start).Round(time.Millisecond), len(set.Insights), len(set.Alerts))
	return result, nil
}

// -----------------------------------------------------------------------------

// persist writes the report files and the database rows. Only a failure to
// write the report file itself is returned; export and database problems
// are logged.
func (p *Pipeline) persist(result *Result) error {
	out := p.Config.Output
	if out.Dir != "" {
		path, err := report.Save(out.Dir, result.Report, out.Format)
		if err != nil {
			return p.Errors.Wrap("save report", err)
		}
		result.ReportPath = path

		if out.ExportTimeline != "" {
			tlPath, err := report.SaveTimeline(path, result.Timeline, out.ExportTimeline)
			p.Errors.Handle(err, "timeline export")
			result.TimelinePath = tlPath
		}
	}

	if p.Store == nil {
		return nil
	}
	if err := p.Store.SaveReport(result.Report); err != nil {
		p.Errors.Handle(p.Errors.Wrap("save report to database", err), "storage")
		return nil
	}
	p.Errors.Handle(p.Store.SaveTimeline(result.Report.ID, result.Timeline), "storage")
	if days := p.Config.Storage.RetentionDays; days > 0 {
		p.Errors.Handle(p.Store.CleanupOldReports(days), "storage cleanup")
	}
	return nil
}

// -----------------------------------------------------------------------------

// Describe is a one-line summary of a result for logs and CLI output.
func Describe(r *Result) string {
	if r == nil || r.Report == nil {
		return "no report"
	}
	return fmt.Sprintf("report %s for %s: %d days, base %s",
		r.Report.ID, r.Report.ReportDate.Format(utils.DayLayout), r.Report.Days, r.Report.Base)
}

// -----------------------------------------------------------------------------

// ProfileRunner binds a pipeline to one profile directory. Concurrent
// refreshes are serialized.
type ProfileRunner struct {
	Pipeline   *Pipeline
	ProfileDir string
	mu         sync.Mutex
}

func NewProfileRunner(p *Pipeline, profileDir string) *ProfileRunner {
	return &ProfileRunner{Pipeline: p, ProfileDir: profileDir}
}

func (r *ProfileRunner) Refresh(ctx context.Context) (*models.MReport, *models.MTimeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.Pipeline.Run(ctx, r.ProfileDir)
	if err != nil {
		return nil, nil, err
	}
	return result.Report, result.Timeline, nil
}
