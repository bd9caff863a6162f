// Package notifier delivers job lifecycle events to external endpoints.
package notifier

import (
	"context"
	"time"
)

// Event describes a finished backtest job.
type Event struct {
	JobID      string    `json:"job_id"`
	Status     string    `json:"status"`
	Signals    int       `json:"signals"`
	Summary    any       `json:"summary,omitempty"`
	Report     string    `json:"report,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Notifier defines the interface for job notifications
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Notify delivers one event
	Notify(ctx context.Context, event Event) error
}
