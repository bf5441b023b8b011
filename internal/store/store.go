// Package store provides SQLite-based persistence of analyzed plans and
// their resolver reports, backing the history command.
package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/taskforge-dev/taskforge/internal/resolver"
	"github.com/taskforge-dev/taskforge/internal/task"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store is the SQLite-backed history of analyzed plans.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for better concurrent read/write behavior.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies the schema if not already at the current version.
func (s *Store) migrate() error {
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&name)

	if err == sql.ErrNoRows {
		if _, err := s.db.Exec(schemaSQL); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
		_, err = s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion)
		return err
	}
	if err != nil {
		return fmt.Errorf("checking schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version < currentSchemaVersion {
		return fmt.Errorf("schema version %d is older than %d and no migration exists", version, currentSchemaVersion)
	}
	return nil
}

// PlanRecord is one row of the plan history.
type PlanRecord struct {
	RowID     int64     `json:"row_id"`
	PlanID    string    `json:"plan_id"`
	Goal      string    `json:"goal"`
	TaskCount int       `json:"task_count"`
	Valid     bool      `json:"valid"`
	CreatedAt time.Time `json:"created_at"`
}

// SavePlan records a plan snapshot and returns the history row ID.
func (s *Store) SavePlan(plan *task.ExecutionPlan) (int64, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return 0, fmt.Errorf("marshaling plan: %w", err)
	}
	result, err := s.db.Exec(
		"INSERT INTO plans (plan_id, goal, task_count, valid, plan_json) VALUES (?, ?, ?, ?, ?)",
		plan.ID, plan.Goal, len(plan.Tasks), plan.Validated, string(data),
	)
	if err != nil {
		return 0, fmt.Errorf("saving plan: %w", err)
	}
	return result.LastInsertId()
}

// GetPlan returns the plan snapshot stored under the history row ID.
func (s *Store) GetPlan(rowID int64) (*task.ExecutionPlan, error) {
	var data string
	err := s.db.QueryRow("SELECT plan_json FROM plans WHERE id = ?", rowID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plan row %d not found", rowID)
	}
	if err != nil {
		return nil, err
	}
	var plan task.ExecutionPlan
	if err := json.Unmarshal([]byte(data), &plan); err != nil {
		return nil, fmt.Errorf("parsing stored plan: %w", err)
	}
	return &plan, nil
}

// ListPlans returns the most recent plan records, newest first.
func (s *Store) ListPlans(limit int) ([]*PlanRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		"SELECT id, plan_id, goal, task_count, valid, created_at FROM plans ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var records []*PlanRecord
	for rows.Next() {
		r := &PlanRecord{}
		if err := rows.Scan(&r.RowID, &r.PlanID, &r.Goal, &r.TaskCount, &r.Valid, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveReport attaches a resolver report to a stored plan.
func (s *Store) SaveReport(planRowID int64, report *resolver.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO reports (plan_row_id, report_json) VALUES (?, ?)",
		planRowID, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// LatestReport returns the most recent report for a stored plan.
func (s *Store) LatestReport(planRowID int64) (*resolver.Report, error) {
	var data string
	err := s.db.QueryRow(
		"SELECT report_json FROM reports WHERE plan_row_id = ? ORDER BY id DESC LIMIT 1",
		planRowID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no report for plan row %d", planRowID)
	}
	if err != nil {
		return nil, err
	}
	var report resolver.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("parsing stored report: %w", err)
	}
	return &report, nil
}
