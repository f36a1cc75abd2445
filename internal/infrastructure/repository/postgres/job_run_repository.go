package postgres

import (
	"context"
	"fmt"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/jobrun"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

// JobRunRepository writes through the pool, never a reconcile transaction,
// so failed runs are still recorded.
type JobRunRepository struct {
	db *sqlx.DB
}

func NewJobRunRepository(db *sqlx.DB) *JobRunRepository {
	return &JobRunRepository{db: db}
}

func (r *JobRunRepository) Upsert(ctx context.Context, run jobrun.Run) error {
	id := strings.TrimSpace(run.ID)
	if id == "" {
		return fmt.Errorf("job run id is required")
	}

	summary, err := marshalSummary(run.Summary)
	if err != nil {
		return fmt.Errorf("marshal job run summary: %w", err)
	}

	model := jobRunTableModel{
		ID:           id,
		JobName:      run.JobName,
		Trigger:      string(run.Trigger),
		Status:       string(run.Status),
		Summary:      summary,
		ErrorMessage: optionalString(run.ErrorMessage),
		StartedAt:    run.StartedAt.UTC(),
		FinishedAt:   run.FinishedAt,
		TraceID:      optionalString(run.TraceID),
		SpanID:       optionalString(run.SpanID),
	}

	query, args, err := qb.InsertModel("job_runs", model, `ON CONFLICT (id)
DO UPDATE SET
    status = EXCLUDED.status,
    summary = EXCLUDED.summary,
    error_message = EXCLUDED.error_message,
    finished_at = EXCLUDED.finished_at,
    trace_id = COALESCE(EXCLUDED.trace_id, job_runs.trace_id),
    span_id = COALESCE(EXCLUDED.span_id, job_runs.span_id)`)
	if err != nil {
		return fmt.Errorf("build upsert job run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job run id=%s status=%s: %w", id, run.Status, err)
	}
	return nil
}

func (r *JobRunRepository) ListRecent(ctx context.Context, limit int) ([]jobrun.Run, error) {
	query, args, err := qb.Select(
		"id", "job_name", "triggered_by", "status", "summary::text AS summary",
		"error_message", "started_at", "finished_at", "trace_id", "span_id",
	).From("job_runs").
		OrderBy("started_at DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list job runs query: %w", err)
	}

	var rows []jobRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list job runs: %w", err)
	}

	out := make([]jobrun.Run, 0, len(rows))
	for _, row := range rows {
		run := jobrun.Run{
			ID:         row.ID,
			JobName:    row.JobName,
			Trigger:    jobrun.Trigger(row.Trigger),
			Status:     jobrun.Status(row.Status),
			StartedAt:  row.StartedAt,
			FinishedAt: row.FinishedAt,
		}
		if row.ErrorMessage != nil {
			run.ErrorMessage = *row.ErrorMessage
		}
		if row.TraceID != nil {
			run.TraceID = *row.TraceID
		}
		if row.SpanID != nil {
			run.SpanID = *row.SpanID
		}
		if row.Summary != "" && row.Summary != "{}" {
			if err := sonic.UnmarshalString(row.Summary, &run.Summary); err != nil {
				return nil, fmt.Errorf("decode job run %s summary: %w", row.ID, err)
			}
		}
		out = append(out, run)
	}
	return out, nil
}

func marshalSummary(summary map[string]any) (string, error) {
	if len(summary) == 0 {
		return "{}", nil
	}
	return sonic.MarshalString(summary)
}
