// Package store archives export metadata in SQLite. The report core itself
// is stateless; the archive is bookkeeping for the CLI so past exports can
// be listed and re-inspected.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ovoronin/gradereport/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		format TEXT NOT NULL,
		filename TEXT NOT NULL,
		subject_count INTEGER NOT NULL DEFAULT 0,
		average_score REAL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS report_subjects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		score_percent REAL,
		reasoning TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (report_id) REFERENCES reports(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveReport archives one export together with its subject rows.
func (s *Store) SaveReport(rep model.ReportRecord, records []model.ScoreRecord) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	createdAt := rep.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := tx.Exec(
		`INSERT INTO reports (title, format, filename, subject_count, average_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rep.Title, rep.Format, rep.Filename, len(records), scoreValue(rep.AverageScore), createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, rec := range records {
		_, err := tx.Exec(
			`INSERT INTO report_subjects (report_id, name, score_percent, reasoning)
			 VALUES (?, ?, ?, ?)`,
			id, rec.Name, scoreValue(rec.ScorePercent), rec.Reasoning,
		)
		if err != nil {
			return 0, fmt.Errorf("insert subject %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// ListReports returns archived reports, newest first.
func (s *Store) ListReports() ([]model.ReportRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, title, format, filename, subject_count, average_score, created_at
		 FROM reports ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.ReportRecord
	for rows.Next() {
		var rep model.ReportRecord
		var avg sql.NullFloat64
		if err := rows.Scan(&rep.ID, &rep.Title, &rep.Format, &rep.Filename,
			&rep.SubjectCount, &avg, &rep.CreatedAt); err != nil {
			return nil, err
		}
		if avg.Valid {
			rep.AverageScore = model.Score(avg.Float64)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// GetReportSubjects returns the archived subject rows for one report, in
// insertion order.
func (s *Store) GetReportSubjects(reportID int64) ([]model.ScoreRecord, error) {
	rows, err := s.db.Query(
		`SELECT name, score_percent, reasoning FROM report_subjects
		 WHERE report_id = ? ORDER BY id`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		var score sql.NullFloat64
		if err := rows.Scan(&rec.Name, &score, &rec.Reasoning); err != nil {
			return nil, err
		}
		if score.Valid {
			rec.ScorePercent = model.Score(score.Float64)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ReportCount returns the number of archived reports.
func (s *Store) ReportCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&count)
	return count, err
}

// scoreValue converts a score pointer to a nullable SQL value; unscored
// stays NULL, never zero.
func scoreValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
