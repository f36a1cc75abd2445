package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/jobrun"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

type jobRunDTO struct {
	ID           string         `json:"id"`
	JobName      string         `json:"job_name"`
	Trigger      string         `json:"trigger"`
	Status       string         `json:"status"`
	Summary      map[string]any `json:"summary,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
	TraceID      string         `json:"trace_id,omitempty"`
}

func jobRunToDTO(run jobrun.Run) jobRunDTO {
	return jobRunDTO{
		ID:           run.ID,
		JobName:      run.JobName,
		Trigger:      string(run.Trigger),
		Status:       string(run.Status),
		Summary:      run.Summary,
		ErrorMessage: run.ErrorMessage,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		TraceID:      run.TraceID,
	}
}

// RunReconcileJob runs one reconcile inline and returns its ledger row.
func (h *Handler) RunReconcileJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "RunReconcileJob")
	defer span.End()

	if h.jobService == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	run, err := h.jobService.RunReconcile(ctx, jobrun.TriggerManual)
	if err != nil {
		h.logger.WarnContext(ctx, "manual reconcile failed", "run_id", run.ID, "status", run.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, jobRunToDTO(run))
}

func (h *Handler) ListJobRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListJobRuns")
	defer span.End()

	if h.jobService == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := parsePositiveInt(raw, "limit")
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		limit = parsed
	}

	runs, err := h.jobService.ListRuns(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list job runs failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]jobRunDTO, 0, len(runs))
	for _, run := range runs {
		items = append(items, jobRunToDTO(run))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
