package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"biometric-insights/src/helpers"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"
	"biometric-insights/src/utils"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) *SQLiteStore {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if _, err := helpers.RetryWithBackoff(d.Logger, "sqlite ping", connectRetries, connectBaseDelay, func() (struct{}, error) {
		return struct{}{}, db.Ping()
	}); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			generated_at INTEGER,
			report_date TEXT,
			profile_dir TEXT,
			body_json TEXT,
			report_text TEXT
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create reports: %w", err)
	}

	// SQLite types: REAL for the optional metrics, TEXT for the day
	cols := make([]string, len(timelineColumns))
	for i, c := range timelineColumns {
		cols[i] = c + " REAL"
	}
	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS timeline_days (
			report_id TEXT,
			day TEXT,
			%s,
			PRIMARY KEY (report_id, day)
		);
	`, strings.Join(cols, ",\n\t\t\t"))
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create timeline_days: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveReport(r *models.MReport) error {
	body, err := encodeReport(r)
	if err != nil {
		return err
	}

	_, err = d.DB.Exec(`
		INSERT INTO reports (id, generated_at, report_date, profile_dir, body_json, report_text)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			generated_at = excluded.generated_at,
			report_date = excluded.report_date,
			profile_dir = excluded.profile_dir,
			body_json = excluded.body_json,
			report_text = excluded.report_text
	`, r.ID, r.GeneratedAt.Unix(), r.ReportDate.Format(utils.DayLayout), r.ProfileDir, body, r.Text)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveTimeline(reportID string, timeline *models.MTimeline) error {
	if timeline.Empty() {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO timeline_days (report_id, day, %s)
		VALUES (?, ?, %s)
		ON CONFLICT (report_id, day) DO UPDATE SET %s
	`, strings.Join(timelineColumns, ", "), placeholders(len(timelineColumns), 0, false), upsertAssignments()))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range timeline.Rows {
		row := &timeline.Rows[i]
		args := append([]any{reportID, dayKey(row)}, timelineValues(row)...)
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) LatestReport() (*models.MReport, error) {
	var body string
	err := d.DB.QueryRow(`SELECT body_json FROM reports ORDER BY generated_at DESC LIMIT 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeReport(body)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) CleanupOldReports(retentionDays int) error {
	cutoff := retentionCutoff(retentionDays)
	d.Logger.Info("Cleaning up reports older than %d days (generated_at < %d)...", retentionDays, cutoff)

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM timeline_days WHERE report_id IN (SELECT id FROM reports WHERE generated_at < ?)`, cutoff); err != nil {
		return fmt.Errorf("cleanup timeline_days: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM reports WHERE generated_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup reports: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		d.Logger.Info("Removed %d old reports", n)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
