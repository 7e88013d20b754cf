// Package store persists image keyword lists and batch run bookkeeping.
// It stands in for the keyword field of an image's metadata so that
// tagging is idempotent across runs.
package store

import (
	"context"
	"time"
)

// RunStatus is the lifecycle state of a locate run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
)

// RunSummary counts per-item outcomes of a run.
type RunSummary struct {
	Total         int `json:"total"`
	Tagged        int `json:"tagged"`
	AlreadyTagged int `json:"already_tagged"`
	NoGPS         int `json:"no_gps"`
	NotFound      int `json:"not_found"`
	Failed        int `json:"failed"`
}

// Run is one batch invocation over a directory of images.
type Run struct {
	ID        string      `json:"id"`
	Dir       string      `json:"dir"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// KeywordStore is the keyword ledger.
type KeywordStore interface {
	// Keywords returns an item's keywords in insertion order.
	Keywords(ctx context.Context, item string) ([]string, error)
	// AddKeyword appends a keyword; adding an existing keyword is a no-op.
	AddKeyword(ctx context.Context, item, keyword string) error

	StartRun(ctx context.Context, dir string) (*Run, error)
	FinishRun(ctx context.Context, runID string, summary RunSummary) error
	GetRun(ctx context.Context, runID string) (*Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
