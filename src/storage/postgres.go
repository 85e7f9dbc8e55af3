package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"biometric-insights/src/helpers"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"
	"biometric-insights/src/utils"

	_ "github.com/lib/pq"
)

var unsafeSchemaChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresStore keeps its tables in a schema named after the application.
func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) *PostgresStore {
	return &PostgresStore{
		Config: cfg,
		Schema: SchemaName(cfg.Name),
		Logger: log,
	}
}

// SchemaName maps an application name to a plain identifier.
func SchemaName(name string) string {
	schema := unsafeSchemaChars.ReplaceAllString(strings.ToLower(name), "_")
	if schema == "" {
		return "biometric_insights"
	}
	return schema
}

func (d *PostgresStore) table(name string) string {
	return fmt.Sprintf(`"%s"."%s"`, d.Schema, name)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if _, err := helpers.RetryWithBackoff(d.Logger, "postgres ping", connectRetries, connectBaseDelay, func() (struct{}, error) {
		return struct{}{}, db.Ping()
	}); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresStore initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) createTables() error {
	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			generated_at BIGINT,
			report_date DATE,
			profile_dir TEXT,
			body_json JSONB,
			report_text TEXT
		);
	`, d.table("reports"))
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create reports: %w", err)
	}

	cols := make([]string, len(timelineColumns))
	for i, c := range timelineColumns {
		cols[i] = c + " DOUBLE PRECISION"
	}
	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			report_id TEXT REFERENCES %s (id) ON DELETE CASCADE,
			day DATE,
			%s,
			PRIMARY KEY (report_id, day)
		);
	`, d.table("timeline_days"), d.table("reports"), strings.Join(cols, ",\n\t\t\t"))
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create timeline_days: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) SaveReport(r *models.MReport) error {
	body, err := encodeReport(r)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, generated_at, report_date, profile_dir, body_json, report_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			generated_at = EXCLUDED.generated_at,
			report_date = EXCLUDED.report_date,
			profile_dir = EXCLUDED.profile_dir,
			body_json = EXCLUDED.body_json,
			report_text = EXCLUDED.report_text
	`, d.table("reports"))
	_, err = d.DB.Exec(query, r.ID, r.GeneratedAt.Unix(), r.ReportDate.Format(utils.DayLayout), r.ProfileDir, body, r.Text)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) SaveTimeline(reportID string, timeline *models.MTimeline) error {
	if timeline.Empty() {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (report_id, day, %s)
		VALUES ($1, $2, %s)
		ON CONFLICT (report_id, day) DO UPDATE SET %s
	`, d.table("timeline_days"), strings.Join(timelineColumns, ", "),
		placeholders(len(timelineColumns), 3, true), upsertAssignments())
	stmt, err := tx.Prepare(query)
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

func (d *PostgresStore) LatestReport() (*models.MReport, error) {
	var body string
	query := fmt.Sprintf(`SELECT body_json FROM %s ORDER BY generated_at DESC LIMIT 1`, d.table("reports"))
	err := d.DB.QueryRow(query).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeReport(body)
}

// -----------------------------------------------------------------------------

// CleanupOldReports relies on ON DELETE CASCADE for the timeline rows.
func (d *PostgresStore) CleanupOldReports(retentionDays int) error {
	cutoff := retentionCutoff(retentionDays)
	d.Logger.Info("Cleaning up reports older than %d days (generated_at < %d)...", retentionDays, cutoff)

	res, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE generated_at < $1`, d.table("reports")), cutoff)
	if err != nil {
		return fmt.Errorf("cleanup reports: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		d.Logger.Info("Removed %d old reports", n)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
