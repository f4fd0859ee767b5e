package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docsketch/constants"
)

// Run is one pipeline execution.
type Run struct {
	ID          uuid.UUID
	StartedAt   time.Time
	FinishedAt  *time.Time
	Source      string
	Status      constants.RunStatus
	Description string
	Provider    string
	ImagePath   string
	Degraded    bool
}

// AttemptRow is one backend/provider invocation within a run. Position
// preserves try order within a stage.
type AttemptRow struct {
	RunID      uuid.UUID
	Stage      string // constants.StageExtract | constants.StageGenerate
	Position   int
	Name       string
	Status     constants.AttemptStatus
	Detail     string
	DurationMS int64
}

// RunRepository stores and queries run history.
type RunRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewRunRepository(db *sql.DB, log *slog.Logger) *RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &RunRepository{db: db, log: log}
}

// Init creates the schema if it does not exist. The SQL sticks to the
// dialect subset both SQLite and Postgres accept.
func (r *RunRepository) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			source TEXT NOT NULL,
			status TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL DEFAULT '',
			image_path TEXT NOT NULL DEFAULT '',
			degraded BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			run_id TEXT NOT NULL REFERENCES runs(id),
			stage TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, stage, position)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Start inserts a new run in RUNNING state.
func (r *RunRepository) Start(ctx context.Context, id uuid.UUID, source string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, source, status) VALUES ($1, $2, $3, $4)`,
		id.String(), time.Now().UTC(), source, string(constants.RunStatusRunning),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish marks a run terminal, recording the outcome fields.
func (r *RunRepository) Finish(ctx context.Context, id uuid.UUID, status constants.RunStatus, description, provider, imagePath string, degraded bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = $1, status = $2, description = $3, provider = $4, image_path = $5, degraded = $6 WHERE id = $7`,
		time.Now().UTC(), string(status), description, provider, imagePath, degraded, id.String(),
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// AddAttempts appends attempt rows for one stage of a run.
func (r *RunRepository) AddAttempts(ctx context.Context, rows []AttemptRow) error {
	for _, row := range rows {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO attempts (run_id, stage, position, name, status, detail, duration_ms)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			row.RunID.String(), row.Stage, row.Position, row.Name, string(row.Status), row.Detail, row.DurationMS,
		)
		if err != nil {
			return fmt.Errorf("insert attempt %s/%s: %w", row.Stage, row.Name, err)
		}
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, source, status, description, provider, image_path, degraded
		 FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run      Run
			idStr    string
			status   string
			finished sql.NullTime
		)
		if err := rows.Scan(&idStr, &run.StartedAt, &finished, &run.Source, &status,
			&run.Description, &run.Provider, &run.ImagePath, &run.Degraded); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", idStr, err)
		}
		run.Status = constants.RunStatus(status)
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// ListAttempts returns all attempts for a run in stage/try order.
func (r *RunRepository) ListAttempts(ctx context.Context, runID uuid.UUID) ([]AttemptRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, stage, position, name, status, detail, duration_ms
		 FROM attempts WHERE run_id = $1 ORDER BY stage, position`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRow
	for rows.Next() {
		var (
			row    AttemptRow
			idStr  string
			status string
		)
		if err := rows.Scan(&idStr, &row.Stage, &row.Position, &row.Name, &status, &row.Detail, &row.DurationMS); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		row.RunID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", idStr, err)
		}
		row.Status = constants.AttemptStatus(status)
		out = append(out, row)
	}
	return out, rows.Err()
}
