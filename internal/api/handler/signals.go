package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/newthinker/sigtrail/internal/api/job"
	"github.com/newthinker/sigtrail/internal/api/response"
	"github.com/newthinker/sigtrail/internal/app"
	"github.com/newthinker/sigtrail/internal/core"
	"github.com/newthinker/sigtrail/internal/metrics"
	"github.com/newthinker/sigtrail/internal/notifier"
	"github.com/newthinker/sigtrail/internal/signals"
)

const (
	defaultJobTimeout = 5 * time.Minute
	defaultMaxBody    = 10 << 20
	notifyTimeout     = 10 * time.Second
)

// Processor runs a batch of signal records.
type Processor interface {
	Process(ctx context.Context, records []signals.Record, exportReport bool) (*app.Run, error)
}

// Config holds handler limits
type Config struct {
	JobTimeout   time.Duration
	MaxBodyBytes int64
}

// SignalsHandler serves synchronous and job-based signal processing.
type SignalsHandler struct {
	processor Processor
	jobs      *job.Store
	metrics   *metrics.Registry
	notifier  notifier.Notifier
	logger    *zap.Logger
	cfg       Config
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(processor Processor, jobs *job.Store, cfg Config, logger *zap.Logger) *SignalsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBody
	}
	return &SignalsHandler{
		processor: processor,
		jobs:      jobs,
		logger:    logger,
		cfg:       cfg,
	}
}

// SetMetrics enables the active jobs gauge
func (h *SignalsHandler) SetMetrics(reg *metrics.Registry) {
	h.metrics = reg
}

// SetNotifier enables job completion notifications
func (h *SignalsHandler) SetNotifier(n notifier.Notifier) {
	h.notifier = n
}

// JobResult is stored on a completed job.
type JobResult struct {
	Data    []json.RawMessage `json:"data"`
	Summary any               `json:"summary"`
	Report  string            `json:"report,omitempty"`
}

// readBatch decodes {"data": [...], "export": bool}.
func (h *SignalsHandler) readBatch(w http.ResponseWriter, r *http.Request) ([]signals.Record, bool, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		return nil, false, core.WrapError(core.ErrInvalidBatch, fmt.Errorf("reading body: %w", err))
	}
	records, err := signals.DecodeBatch(body)
	if err != nil {
		return nil, false, err
	}
	return records, gjson.GetBytes(body, "export").Bool(), nil
}

// Process handles POST /api/process-signals and returns the augmented
// records in input order.
func (h *SignalsHandler) Process(w http.ResponseWriter, r *http.Request) {
	records, exportReport, err := h.readBatch(w, r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	run, err := h.processor.Process(r.Context(), records, exportReport)
	if err != nil {
		h.logger.Error("processing signals", zap.Int("signals", len(records)), zap.Error(err))
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, run.Augmented, response.Meta{
		Summary: run.Stats,
		Report:  run.ReportPath,
	})
}

// CreateJob handles POST /api/v1/jobs and runs the batch in the background.
func (h *SignalsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	records, exportReport, err := h.readBatch(w, r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	j := h.jobs.Create("backtest")

	// Copy values before starting goroutine to avoid race
	jobID := j.ID
	status := j.Status

	go h.runJob(jobID, records, exportReport)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id":  jobID,
		"status":  status,
		"signals": len(records),
	})
}

// runJob executes the batch and updates job status.
func (h *SignalsHandler) runJob(jobID string, records []signals.Record, exportReport bool) {
	if h.metrics != nil {
		h.metrics.JobStarted()
		defer h.metrics.JobFinished()
	}

	h.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.JobTimeout)
	defer cancel()
	run, err := h.processor.Process(ctx, records, exportReport)

	if err != nil {
		h.logger.Warn("job failed", zap.String("job_id", jobID), zap.Error(err))
		h.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = core.WrapError(core.ErrJobFailed, err)
		})
		h.notify(notifier.Event{
			JobID:   jobID,
			Status:  string(job.StatusFailed),
			Signals: len(records),
			Error:   err.Error(),
		})
		return
	}

	h.logger.Info("job complete",
		zap.String("job_id", jobID),
		zap.Int("signals", len(records)),
		zap.Duration("duration", run.Duration),
	)
	h.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Progress = 100
		j.Result = JobResult{
			Data:    run.Augmented,
			Summary: run.Stats,
			Report:  run.ReportPath,
		}
	})
	h.notify(notifier.Event{
		JobID:   jobID,
		Status:  string(job.StatusComplete),
		Signals: len(records),
		Summary: run.Stats,
		Report:  run.ReportPath,
	})
}

func (h *SignalsHandler) notify(event notifier.Event) {
	if h.notifier == nil {
		return
	}
	event.FinishedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := h.notifier.Notify(ctx, event); err != nil {
		h.logger.Warn("job notification failed",
			zap.String("job_id", event.JobID),
			zap.String("notifier", h.notifier.Name()),
			zap.Error(err),
		)
	}
}

// GetJob handles GET /api/v1/jobs/{id}.
func (h *SignalsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	resp := map[string]any{
		"job_id":     j.ID,
		"status":     j.Status,
		"progress":   j.Progress,
		"created_at": j.CreatedAt,
		"updated_at": j.UpdatedAt,
	}

	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		detail := map[string]string{
			"code":    j.Error.Code,
			"message": j.Error.Message,
		}
		if j.Error.Cause != nil {
			detail["cause"] = j.Error.Cause.Error()
		}
		resp["error"] = detail
	}

	response.JSON(w, http.StatusOK, resp)
}

// ListJobs handles GET /api/v1/jobs.
func (h *SignalsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobs.List()
	out := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, map[string]any{
			"job_id":     j.ID,
			"status":     j.Status,
			"created_at": j.CreatedAt,
		})
	}
	response.JSON(w, http.StatusOK, out)
}
